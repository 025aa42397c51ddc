// Package supervisor implements the Supervisor Node (§4.5): the
// plan/route state machine, with deterministic fast-paths and an LLM
// fallback. This is the "supervisor" node the graph engine enters on every
// request and returns to after every worker.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
	"github.com/supervisorrt/orchestrator/registry"
	"github.com/supervisorrt/orchestrator/state"
)

// Config holds the supervisor's tunables (§6.5).
type Config struct {
	MaxIterations  int
	MaxTaskSteps   int
	EnablePlanning bool
}

// DefaultConfig returns the §6.5 defaults.
func DefaultConfig() Config {
	return Config{
		MaxIterations:  state.DefaultMaxIterations,
		MaxTaskSteps:   state.DefaultMaxTaskSteps,
		EnablePlanning: true,
	}
}

// Supervisor is the plan/route state machine (§4.5).
type Supervisor struct {
	Registry *registry.Registry
	Model    chatmodel.Model
	Config   Config
}

// New builds a Supervisor over reg and model with cfg.
func New(reg *registry.Registry, model chatmodel.Model, cfg Config) *Supervisor {
	return &Supervisor{Registry: reg, Model: model, Config: cfg}
}

// planOutput is the structured shape expected from the planning LLM call
// (§4.5.3, §6.4).
type planOutput struct {
	Steps []struct {
		Worker      string `json:"worker"`
		Description string `json:"description"`
	} `json:"steps"`
	Reasoning string `json:"reasoning"`
}

// routeOutput is the structured shape expected from the routing LLM call
// (§4.5.4, §6.4).
type routeOutput struct {
	Next         string `json:"next"`
	Reasoning    string `json:"reasoning"`
	ShouldReplan bool   `json:"should_replan"`
}

// Execute implements the graph.NodeFunc signature: the supervisor node.
func (s *Supervisor) Execute(ctx context.Context, st state.SupervisorState) (state.Update, error) {
	iter := st.IterationCount + 1

	// §4.5.1 guard — iteration cap.
	if st.IterationCount >= s.Config.MaxIterations {
		finish := state.Finish
		return state.Update{
			Next:           &finish,
			IterationCount: &iter,
			Metadata:       map[string]any{"terminated_reason": "max_iterations_reached"},
		}, nil
	}

	// §4.5.2 registry check.
	snapshot := s.Registry.Snapshot()
	if len(snapshot) == 0 {
		finish := state.Finish
		return state.Update{Next: &finish, IterationCount: &iter}, nil
	}
	names := s.Registry.Names()

	update := state.Update{IterationCount: &iter}

	// §4.5.3 plan phase.
	if len(st.TaskPlan) == 0 && s.Config.EnablePlanning {
		plan, reasoning := s.plan(ctx, st, snapshot, names)
		update.TaskPlan = plan
		zero := 0
		update.CurrentStepIndex = &zero
		update.ThinkingSteps = append(update.ThinkingSteps, state.ThinkingStep{
			Kind:    state.ThinkingPlanning,
			Content: reasoning,
			Worker:  "supervisor",
		})
		st = state.Reduce(st, update)
	}

	next, decision, replan := s.route(ctx, st, snapshot, names)
	update.Next = &next
	if replan {
		// §9 Open Question, resolved: should_replan clears task_plan only,
		// leaving thinking_steps and iteration_count untouched.
		update.TaskPlan = []state.TaskStep{}
	}
	if decision != "" {
		update.ThinkingSteps = append(update.ThinkingSteps, state.ThinkingStep{
			Kind:    state.ThinkingDecision,
			Content: decision,
			Worker:  "supervisor",
		})
	}
	return update, nil
}

// plan runs §4.5.3, returning the synthesized task plan and the model's
// reasoning (or the fallback reasoning on exception).
func (s *Supervisor) plan(ctx context.Context, st state.SupervisorState, snapshot []registry.Entry, names map[string]struct{}) ([]state.TaskStep, string) {
	resp, err := s.Model.Invoke(ctx, chatmodel.Request{
		Temperature:      0,
		StructuredSchema: planSchema,
		Messages: []chatmodel.Message{
			{Role: chatmodel.RoleSystem, Content: formatPlanningPrompt(snapshot, s.Config.MaxTaskSteps)},
			{Role: chatmodel.RoleUser, Content: st.OriginalQuery},
		},
	})
	if err != nil {
		return []state.TaskStep{{Worker: "General", Description: "Process user request", Status: state.StepPending}},
			fmt.Sprintf("planning failed (%v); falling back to a single General step", err)
	}

	var out planOutput
	if jsonErr := json.Unmarshal([]byte(resp.Content), &out); jsonErr != nil {
		return []state.TaskStep{{Worker: "General", Description: "Process user request", Status: state.StepPending}},
			fmt.Sprintf("plan output unparsable (%v); falling back to a single General step", jsonErr)
	}

	steps := make([]state.TaskStep, 0, len(out.Steps))
	for i, raw := range out.Steps {
		if i >= s.Config.MaxTaskSteps {
			break
		}
		worker := stripTypeSuffix(raw.Worker)
		if _, ok := names[worker]; !ok {
			worker = "General"
		}
		steps = append(steps, state.TaskStep{
			StepID:      fmt.Sprintf("step-%d", i+1),
			Worker:      worker,
			Description: raw.Description,
			Status:      state.StepPending,
		})
	}
	if len(steps) == 0 {
		steps = []state.TaskStep{{Worker: "General", Description: "Process user request", Status: state.StepPending}}
	}
	return steps, out.Reasoning
}

// stripTypeSuffix removes a trailing " [type]" tag the planner sometimes
// echoes from the worker-list prompt (§4.5.3).
func stripTypeSuffix(worker string) string {
	if idx := strings.LastIndex(worker, " ["); idx >= 0 && strings.HasSuffix(worker, "]") {
		return strings.TrimSpace(worker[:idx])
	}
	return worker
}

// route runs §4.5.4: fast-paths A, B, C, then the LLM route as last resort.
// The returned decision string is recorded as a thinking step when
// non-empty; replan reports whether should_replan was set by the LLM route.
func (s *Supervisor) route(ctx context.Context, st state.SupervisorState, snapshot []registry.Entry, names map[string]struct{}) (next, decision string, replan bool) {
	completed, total := 0, len(st.TaskPlan)
	for _, step := range st.TaskPlan {
		if step.Status == state.StepCompleted || step.Status == state.StepSkipped {
			completed++
		}
	}

	// Fast-path A — all done.
	if total > 0 && completed >= total {
		return state.Finish, "all plan steps complete", false
	}

	// Fast-path B — single-step already answered.
	if total == 1 && completed == 0 && hasRegisteredAssistantMessage(st, names) {
		return state.Finish, "single-step plan already has an authored answer", false
	}

	// Fast-path C — linear execution.
	for _, step := range st.TaskPlan {
		if step.Status.Terminal() {
			continue
		}
		worker := resolveWorkerName(step.Worker, names)
		return worker, fmt.Sprintf("routing to %s for: %s", worker, step.Description), false
	}

	// LLM route, last resort.
	return s.llmRoute(ctx, st, snapshot, names)
}

func hasRegisteredAssistantMessage(st state.SupervisorState, names map[string]struct{}) bool {
	for _, m := range st.Messages {
		if m.Role != state.RoleAssistant || m.Author == "" {
			continue
		}
		if _, ok := names[m.Author]; ok {
			return true
		}
	}
	return false
}

func resolveWorkerName(worker string, names map[string]struct{}) string {
	if _, ok := names[worker]; ok {
		return worker
	}
	for name := range names {
		if strings.EqualFold(name, worker) {
			return name
		}
	}
	if _, ok := names["General"]; ok {
		return "General"
	}
	return state.Finish
}

func (s *Supervisor) llmRoute(ctx context.Context, st state.SupervisorState, snapshot []registry.Entry, names map[string]struct{}) (next, decision string, replan bool) {
	resp, err := s.Model.Invoke(ctx, chatmodel.Request{
		Temperature:      0,
		StructuredSchema: routeSchema,
		Messages: []chatmodel.Message{
			{Role: chatmodel.RoleSystem, Content: formatRoutingPrompt(snapshot, st.TaskPlan)},
			{Role: chatmodel.RoleUser, Content: st.OriginalQuery},
		},
	})
	firstUnfinished := func() string {
		for _, step := range st.TaskPlan {
			if !step.Status.Terminal() {
				return resolveWorkerName(step.Worker, names)
			}
		}
		if _, ok := names["General"]; ok {
			return "General"
		}
		return state.Finish
	}

	if err != nil {
		return firstUnfinished(), fmt.Sprintf("route LLM call failed (%v); using first unfinished step", err), false
	}

	var out routeOutput
	if jsonErr := json.Unmarshal([]byte(resp.Content), &out); jsonErr != nil {
		return firstUnfinished(), fmt.Sprintf("route output unparsable (%v); using first unfinished step", jsonErr), false
	}

	next = out.Next
	if next != state.Finish {
		if _, ok := names[next]; !ok {
			if extracted := extractWorkerName(out.Reasoning, names); extracted != "" {
				next = extracted
			} else {
				next = firstUnfinished()
			}
		}
	}
	if next == state.Finish && hasUnfinishedSteps(st.TaskPlan) {
		next = firstUnfinished()
	}
	return next, out.Reasoning, out.ShouldReplan
}

func hasUnfinishedSteps(plan []state.TaskStep) bool {
	for _, step := range plan {
		if !step.Status.Terminal() {
			return true
		}
	}
	return false
}

func extractWorkerName(text string, names map[string]struct{}) string {
	for name := range names {
		if strings.Contains(text, name) {
			return name
		}
	}
	return ""
}
