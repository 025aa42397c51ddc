// Package state defines the typed conversation state threaded through the
// supervisor graph and the per-field reducer that merges node outputs into
// it (§3.5). The reducer is a pure, table-driven function — no component
// mutates SupervisorState directly; every node returns an Update and the
// graph engine applies it via Reduce.
package state

import (
	"strconv"
	"strings"
)

const (
	// DefaultMaxIterations is the default MAX_ITERATIONS guard (§3.5, §6.5
	// SUPERVISOR_MAX_ITERATIONS).
	DefaultMaxIterations = 10
	// DefaultMaxTaskSteps is the default MAX_TASK_STEPS guard (§3.5, §6.5
	// SUPERVISOR_MAX_TASK_STEPS).
	DefaultMaxTaskSteps = 8
	// Finish is the literal sentinel worker name meaning "stop the graph".
	Finish = "FINISH"
)

// SupervisorState is the root entity threaded through the graph (§3.5).
// Every field is merged by its own reducer when a node returns an Update;
// SupervisorState itself is never mutated by a node.
type SupervisorState struct {
	Messages         []Message
	Next             string
	TaskPlan         []TaskStep
	CurrentStepIndex int
	OriginalQuery    string
	UserContext      UserContext
	CurrentWorker    string
	IterationCount   int
	ThinkingSteps    []ThinkingStep
	Metadata         map[string]any

	// nextMsgSeq backs synthetic Message.ID assignment (§3, expansion). It is
	// not part of the reduced shape exposed to nodes; bumped by Reduce and
	// re-seeded by Resume.
	nextMsgSeq int
}

// New returns a freshly seeded SupervisorState for a new request, built from
// a user message and the caller's context (service.Run / RunStream §4.8.1).
func New(userMessage string, uc UserContext) SupervisorState {
	uc = uc.WithDefaults()
	s := SupervisorState{
		OriginalQuery: userMessage,
		UserContext:   uc,
		Metadata:      map[string]any{},
	}
	s = Reduce(s, Update{
		Messages: []Message{{Role: RoleUser, Content: userMessage}},
	})
	return s
}

// Resume returns a SupervisorState seeded from a prior conversation's
// messages (typically unmarshaled from a checkpointer snapshot) for a new
// turn: per-turn planning fields (task_plan, next, iteration_count,
// thinking_steps) start clean, but nextMsgSeq is advanced past every
// "msg-N" id already present so this turn's synthetic ids never collide
// with — and silently overwrite — a persisted message (§5: checkpointers
// persist conversation state per thread_id across otherwise-stateless
// requests).
func Resume(messages []Message, uc UserContext) SupervisorState {
	s := SupervisorState{
		Messages:    messages,
		UserContext: uc.WithDefaults(),
		Metadata:    map[string]any{},
	}
	for _, m := range messages {
		if n, ok := parseSyntheticSeq(m.ID); ok && n > s.nextMsgSeq {
			s.nextMsgSeq = n
		}
	}
	return s
}

func parseSyntheticSeq(id string) (int, bool) {
	const prefix = "msg-"
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(prefix):])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Invariants reports whether every §3.5 invariant holds for s. maxIter and
// maxSteps are the configured caps (§6.5); pass DefaultMaxIterations /
// DefaultMaxTaskSteps when unconfigured. registered is the set of worker
// names known to the registry snapshot for this request.
func (s SupervisorState) Invariants(maxIter, maxSteps int, registered map[string]struct{}) []string {
	var problems []string
	if s.CurrentStepIndex < 0 || s.CurrentStepIndex > len(s.TaskPlan) {
		problems = append(problems, "current_step_index out of range")
	}
	if s.IterationCount > maxIter {
		problems = append(problems, "iteration_count exceeds MAX_ITERATIONS")
	}
	if len(s.TaskPlan) > maxSteps {
		problems = append(problems, "task_plan exceeds MAX_TASK_STEPS")
	}
	if s.Next != "" && s.Next != Finish {
		if _, ok := registered[s.Next]; !ok {
			problems = append(problems, "next names an unregistered worker")
		}
	}
	return problems
}
