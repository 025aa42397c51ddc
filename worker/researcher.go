package worker

import (
	"context"
	"fmt"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
	"github.com/supervisorrt/orchestrator/state"
	"github.com/supervisorrt/orchestrator/toolsource"
)

// ResearcherName is the registered name of the built-in research worker
// (§4.4, priority 10).
const ResearcherName = "Researcher"

// searchToolName is the well-known tool the researcher prefers; when the
// tool source has no such tool registered, Researcher falls back to
// answering from the model's own knowledge (§4.4 fallback rule).
const searchToolName = "web_search"

// Researcher answers research/lookup questions, preferring a bound
// web_search tool and falling back to model-only reasoning when the tool
// is unavailable.
type Researcher struct {
	Model chatmodel.Model
	Tools toolsource.Source
}

// Name implements worker.Worker.
func (r *Researcher) Name() string { return ResearcherName }

// Execute implements worker.Worker.
func (r *Researcher) Execute(ctx context.Context, s state.SupervisorState) (state.Update, error) {
	step, ok := CurrentStep(s)
	query := s.OriginalQuery
	if ok && step.Description != "" {
		query = step.Description
	}

	req := chatmodel.Request{
		Temperature: 0.3,
		Messages: []chatmodel.Message{
			{Role: chatmodel.RoleSystem, Content: "You are a careful researcher. Cite what you find; say so plainly if you are uncertain."},
			{Role: chatmodel.RoleUser, Content: query},
		},
	}
	if spec, ok := r.Tools.Schema(searchToolName); ok {
		req = req.BindTools(chatmodel.ToolDef{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.Parameters,
		})
	}

	resp, err := r.Model.Invoke(ctx, req)
	if err != nil {
		return StandardResponse(s, ResearcherName, "", fmt.Errorf("research failed: %w", err)), nil
	}

	content := resp.Content
	for _, call := range resp.ToolCalls {
		if call.Name != searchToolName {
			continue
		}
		result, toolErr := r.Tools.Invoke(ctx, call.Name, call.Arguments)
		if toolErr != nil {
			content = fmt.Sprintf("%s\n\n(web search unavailable: %v; answering from existing knowledge)", content, toolErr)
			continue
		}
		follow, followErr := r.Model.Invoke(ctx, chatmodel.Request{
			Temperature: 0.3,
			Messages: append(req.Messages, chatmodel.Message{
				Role:       chatmodel.RoleTool,
				Content:    string(result),
				ToolCallID: call.ID,
			}),
		})
		if followErr == nil {
			content = follow.Content
		}
	}
	if content == "" {
		content = "I could not find a confident answer to that."
	}
	return StandardResponse(s, ResearcherName, content, nil), nil
}
