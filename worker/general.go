package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
	"github.com/supervisorrt/orchestrator/state"
	"github.com/supervisorrt/orchestrator/toolsource"
)

// GeneralName is the registered name of the catch-all fallback worker
// (§4.4: unregistered plan workers are coerced to this name).
const GeneralName = "General"

// historyWindow bounds how much conversation General feeds back to the
// model, matching the "last 6 messages" window noted in §4.4.
const historyWindow = 6

// FallbackManager renders a tool invocation inline when a model does not
// support tool calling, embedding the call literally into the prompt
// instead of using the provider's structured tool-call channel.
type FallbackManager struct {
	Tools toolsource.Source
}

// Render produces a plain-text instruction block listing available tools,
// for models whose ToolsSupported flag has flipped to false.
func (f *FallbackManager) Render() string {
	specs := f.Tools.List()
	if len(specs) == 0 {
		return ""
	}
	out := "You do not have native tool calling. If you need a tool, respond with a line `USE_TOOL <name> <json args>` instead of calling it directly. Available tools:\n"
	for _, s := range specs {
		out += fmt.Sprintf("- %s: %s\n", s.Name, s.Description)
	}
	return out
}

// General is the catch-all worker: it attempts tool-calling, and once a
// model call reports tools are unsupported it flips ToolsSupported to false
// permanently for this instance (one-way, §4.4) and falls back to
// FallbackManager's literal embedding for the rest of the process lifetime.
type General struct {
	Model          chatmodel.Model
	Tools          toolsource.Source
	Fallback       *FallbackManager
	ToolsSupported bool // starts true; the worker flips it false, never back
}

// NewGeneral constructs a General worker with tool calling enabled.
func NewGeneral(model chatmodel.Model, tools toolsource.Source) *General {
	return &General{
		Model:          model,
		Tools:          tools,
		Fallback:       &FallbackManager{Tools: tools},
		ToolsSupported: true,
	}
}

// Name implements worker.Worker.
func (g *General) Name() string { return GeneralName }

// Execute implements worker.Worker.
func (g *General) Execute(ctx context.Context, s state.SupervisorState) (state.Update, error) {
	step, ok := CurrentStep(s)
	prompt := s.OriginalQuery
	if ok && step.Description != "" {
		prompt = step.Description
	}

	msgs := []chatmodel.Message{{Role: chatmodel.RoleSystem, Content: "You are a helpful general-purpose assistant."}}
	if !g.ToolsSupported {
		if instructions := g.Fallback.Render(); instructions != "" {
			msgs = append(msgs, chatmodel.Message{Role: chatmodel.RoleSystem, Content: instructions})
		}
	}
	msgs = append(msgs, recentMessages(s.Messages, historyWindow)...)
	msgs = append(msgs, chatmodel.Message{Role: chatmodel.RoleUser, Content: prompt})

	req := chatmodel.Request{Temperature: 0.5, Messages: msgs}
	if g.ToolsSupported {
		for _, spec := range g.Tools.List() {
			req = req.BindTools(chatmodel.ToolDef{Name: spec.Name, Description: spec.Description, Parameters: spec.Parameters})
		}
	}

	resp, err := g.Model.Invoke(ctx, req)
	if err != nil {
		if isUnsupportedToolsError(err) {
			g.ToolsSupported = false
			return g.Execute(ctx, s)
		}
		return StandardResponse(s, GeneralName, "", fmt.Errorf("general worker failed: %w", err)), nil
	}

	content := resp.Content
	for _, call := range resp.ToolCalls {
		result, toolErr := g.Tools.Invoke(ctx, call.Name, call.Arguments)
		if toolErr != nil {
			content += fmt.Sprintf("\n\n(tool %s failed: %v)", call.Name, toolErr)
			continue
		}
		content += fmt.Sprintf("\n\n[%s result]: %s", call.Name, string(result))
	}
	return StandardResponse(s, GeneralName, content, nil), nil
}

func recentMessages(all []state.Message, n int) []chatmodel.Message {
	start := 0
	if len(all) > n {
		start = len(all) - n
	}
	out := make([]chatmodel.Message, 0, len(all)-start)
	for _, m := range all[start:] {
		role := chatmodel.RoleUser
		switch m.Role {
		case state.RoleAssistant:
			role = chatmodel.RoleAssistant
		case state.RoleSystem:
			role = chatmodel.RoleSystem
		case state.RoleTool:
			role = chatmodel.RoleTool
		}
		out = append(out, chatmodel.Message{Role: role, Content: m.Content})
	}
	return out
}

// isUnsupportedToolsError reports whether err indicates the bound model
// does not support tool calling at all, as opposed to a transient failure.
// Adapters surface this as a plain error; this is a conservative text match
// since no adapter defines a typed sentinel for it yet.
func isUnsupportedToolsError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "tool") && (strings.Contains(msg, "not support") || strings.Contains(msg, "unsupported"))
}
