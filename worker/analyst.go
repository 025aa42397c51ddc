package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
	"github.com/supervisorrt/orchestrator/state"
)

// AnalystName is the registered name of the built-in analysis worker
// (§4.4, priority 10, temperature 0.1).
const AnalystName = "Analyst"

// Analyst answers reasoning/analysis questions at low temperature. It
// declines time/date questions in its own description so the supervisor's
// planner routes those elsewhere (§4.4: Analyst has no clock access).
type Analyst struct {
	Model chatmodel.Model
}

// Name implements worker.Worker.
func (a *Analyst) Name() string { return AnalystName }

// Description documents the worker for the planner prompt; surfaced via
// the registry entry, not part of the Worker interface itself.
func (a *Analyst) Description() string {
	return "Analyzes data and reasons about problems. Has no access to the current date or time."
}

// Execute implements worker.Worker.
func (a *Analyst) Execute(ctx context.Context, s state.SupervisorState) (state.Update, error) {
	step, ok := CurrentStep(s)
	prompt := s.OriginalQuery
	if ok && step.Description != "" {
		prompt = step.Description
	}

	var history strings.Builder
	for _, m := range s.Messages {
		if m.Role == state.RoleUser || m.Role == state.RoleAssistant {
			fmt.Fprintf(&history, "%s: %s\n", m.Role, m.Content)
		}
	}

	resp, err := a.Model.Invoke(ctx, chatmodel.Request{
		Temperature: 0.1,
		Messages: []chatmodel.Message{
			{Role: chatmodel.RoleSystem, Content: "You are a rigorous analyst. Reason step by step but report only your conclusion."},
			{Role: chatmodel.RoleUser, Content: history.String() + "\n" + prompt},
		},
	})
	if err != nil {
		return StandardResponse(s, AnalystName, "", fmt.Errorf("analysis failed: %w", err)), nil
	}
	return StandardResponse(s, AnalystName, resp.Content, nil), nil
}
