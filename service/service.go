package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supervisorrt/orchestrator/capability/checkpointer"
	"github.com/supervisorrt/orchestrator/graph"
	"github.com/supervisorrt/orchestrator/perf"
	"github.com/supervisorrt/orchestrator/state"
)

// Result is the non-streaming response shape (§4.8.1).
type Result struct {
	Answer string
	Source string // "cache", "rule", or "graph"
	Cached bool
}

// Service wires the performance layer and the graph engine into the two
// request entry points (§4.8). Checkpointer is optional; a nil value means
// no conversation persistence across requests.
type Service struct {
	Perf         *perf.Layer
	Graph        *graph.Graph
	Checkpointer checkpointer.Checkpointer
}

// New builds a Service.
func New(perfLayer *perf.Layer, g *graph.Graph, cp checkpointer.Checkpointer) *Service {
	return &Service{Perf: perfLayer, Graph: g, Checkpointer: cp}
}

// Run implements the non-streaming entry point (§4.8.1).
func (s *Service) Run(ctx context.Context, message, threadID string, uc state.UserContext) (Result, error) {
	if hit := s.Perf.ProcessQuery(ctx, message); hit.Hit {
		return Result{Answer: hit.Answer, Source: hit.Source, Cached: true}, nil
	}

	initial := s.seedState(ctx, message, threadID, uc)
	final, err := s.Graph.Run(ctx, initial, nil)
	if err != nil {
		return Result{}, fmt.Errorf("service: run: %w", err)
	}
	s.checkpoint(ctx, threadID, final)

	answer := lastAssistantContent(final)
	if answer != "" {
		go s.Perf.Cache.Save(detachedContext(ctx), message, answer)
	}
	return Result{Answer: answer, Source: "graph"}, nil
}

// seedState builds the state a run starts from: a fresh SupervisorState for
// a new or checkpointer-less thread, or a resumed conversation (prior
// messages carried forward, per-turn planning fields reset) when threadID
// has a saved snapshot (§5: "no cross-request shared mutable state exists
// in SupervisorState; checkpointers persist per thread_id").
func (s *Service) seedState(ctx context.Context, message, threadID string, uc state.UserContext) state.SupervisorState {
	fresh := state.New(message, uc)
	if s.Checkpointer == nil || threadID == "" {
		return fresh
	}
	snap, err := s.Checkpointer.Load(ctx, threadID)
	if err != nil {
		return fresh
	}
	var prior state.SupervisorState
	if jsonErr := json.Unmarshal(snap.Data, &prior); jsonErr != nil {
		return fresh
	}
	resumed := state.Resume(prior.Messages, uc)
	query := message
	return state.Reduce(resumed, state.Update{
		Messages:      []state.Message{{Role: state.RoleUser, Content: message}},
		OriginalQuery: &query,
	})
}

// checkpoint saves final under threadID, swallowing any error: a
// checkpointer write is persistence best-effort, not part of the response
// contract (mirrors the semantic cache's fire-and-forget write).
func (s *Service) checkpoint(ctx context.Context, threadID string, final state.SupervisorState) {
	if s.Checkpointer == nil || threadID == "" {
		return
	}
	data, err := json.Marshal(final)
	if err != nil {
		return
	}
	_ = s.Checkpointer.Save(ctx, checkpointer.Snapshot{ThreadID: threadID, Data: data})
}

// RunStream implements the streaming entry point (§4.8.2), delivering
// events to emit in strict monotonic order: exactly one start first, and
// exactly one done or error last.
func (s *Service) RunStream(ctx context.Context, message, threadID string, uc state.UserContext, emit func(Event)) error {
	emit(Event{Type: EventStart})

	if hit := s.Perf.ProcessQuery(ctx, message); hit.Hit {
		emit(Event{Type: EventAnswer, Content: hit.Answer})
		emit(Event{Type: EventDone})
		return nil
	}

	initial := s.seedState(ctx, message, threadID, uc)
	lastProgress := -1

	final, err := s.Graph.Run(ctx, initial, func(step graph.StepUpdate) {
		total := len(step.Merged.TaskPlan)
		current := step.Merged.CurrentStepIndex

		if step.Node != "supervisor" && len(step.Update.Messages) > 0 {
			content := step.Update.Messages[len(step.Update.Messages)-1].Content
			var progress *Progress
			if total > 1 {
				progress = &Progress{Current: current, Total: total}
			}
			emit(Event{Type: EventAnswer, Content: content, Progress: progress})
			return
		}
		if step.Node == "supervisor" && current > lastProgress && current > 0 && total > 1 {
			lastProgress = current
			emit(Event{Type: EventProgress, Progress: &Progress{Current: current, Total: total}})
		}
	})
	if err != nil {
		emit(Event{Type: EventError, Content: "request failed"})
		return fmt.Errorf("service: run_stream: %w", err)
	}

	s.checkpoint(ctx, threadID, final)
	if answer := lastAssistantContent(final); answer != "" {
		go s.Perf.Cache.Save(detachedContext(ctx), message, answer)
	}
	emit(Event{Type: EventDone})
	return nil
}

func lastAssistantContent(s state.SupervisorState) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == state.RoleAssistant {
			return s.Messages[i].Content
		}
	}
	return ""
}

// detachedContext strips cancellation/deadline from ctx for the
// fire-and-forget cache write, which must outlive the request that
// triggered it, while still carrying any request-scoped values forward.
func detachedContext(ctx context.Context) context.Context {
	return detached{ctx}
}

type detached struct{ context.Context }

func (detached) Deadline() (time.Time, bool) { return time.Time{}, false }
func (detached) Done() <-chan struct{}       { return nil }
func (detached) Err() error                  { return nil }
