// Package worker defines the Worker contract (§4.4) and the built-in
// workers: researcher, analyst, writer, general, and the DataTeam subgraph.
// A Worker is a graph node: it receives the full SupervisorState and
// returns a partial state.Update: the standard response rules (§4.4.1-3)
// govern how every worker reports success, failure, and routes back to the
// supervisor.
package worker

import (
	"context"
	"time"

	"github.com/supervisorrt/orchestrator/state"
)

// Worker executes one step of a plan against the current state and returns
// a partial update for the reducer to apply.
type Worker interface {
	Name() string
	Execute(ctx context.Context, s state.SupervisorState) (state.Update, error)
}

// nowFunc is overridable in tests; production code always uses time.Now.
var nowFunc = time.Now

// StandardResponse builds the Update every worker returns on completion
// (§4.4.1): an authored assistant message, routing back to the supervisor,
// current_worker set to workerName, a thinking step recording the outcome,
// and — when s has a current task step — that step marked
// completed/failed and current_step_index advanced past it. err, if
// non-nil, marks the
// corresponding TaskStep failed instead of completed.
func StandardResponse(s state.SupervisorState, workerName, content string, err error) state.Update {
	kind := state.ThinkingReflection
	thinkingContent := content
	if err != nil {
		thinkingContent = err.Error()
	}
	next := "supervisor"
	msg := state.NewAssistantMessage(workerName, content)
	update := state.Update{
		Messages:      []state.Message{msg},
		Next:          &next,
		CurrentWorker: &workerName,
		ThinkingSteps: []state.ThinkingStep{{
			Kind:      kind,
			Content:   thinkingContent,
			Worker:    workerName,
			Timestamp: float64(nowFunc().UnixNano()) / 1e9,
		}},
	}
	if _, ok := CurrentStep(s); ok {
		update.TaskPlan = ApplyStepStatus(s.TaskPlan, s.CurrentStepIndex, content, err)
		advanced := s.CurrentStepIndex + 1
		update.CurrentStepIndex = &advanced
	}
	return update
}

// ApplyStepStatus returns a TaskPlan update marking the step at index as
// completed/failed with result/errMsg, the piece of StandardResponse that
// needs the full plan (and so can't be folded into a single Update) because
// TaskPlan's reducer replaces the whole list (§3.5).
func ApplyStepStatus(plan []state.TaskStep, index int, result string, stepErr error) []state.TaskStep {
	if index < 0 || index >= len(plan) {
		return plan
	}
	out := make([]state.TaskStep, len(plan))
	copy(out, plan)
	step := out[index]
	if stepErr != nil {
		step.Status = state.StepFailed
		step.Error = stepErr.Error()
	} else {
		step.Status = state.StepCompleted
		step.Result = result
	}
	out[index] = step.Truncate()
	return out
}

// CurrentStep returns the TaskStep the supervisor most recently routed to,
// given current_step_index, or false if the plan is empty or exhausted.
func CurrentStep(s state.SupervisorState) (state.TaskStep, bool) {
	if s.CurrentStepIndex < 0 || s.CurrentStepIndex >= len(s.TaskPlan) {
		return state.TaskStep{}, false
	}
	return s.TaskPlan[s.CurrentStepIndex], true
}
