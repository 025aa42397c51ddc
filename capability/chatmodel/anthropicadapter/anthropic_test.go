package anthropicadapter

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
)

// toParams needs no network client, so these exercise it directly over a
// zero-value Adapter carrying only the default model.

func TestToParams_SplitsSystemFromMessages(t *testing.T) {
	a := &Adapter{model: anthropic.Model("claude-default")}
	req := chatmodel.Request{
		Messages: []chatmodel.Message{
			{Role: chatmodel.RoleSystem, Content: "be terse"},
			{Role: chatmodel.RoleUser, Content: "hi"},
			{Role: chatmodel.RoleAssistant, Content: "hello"},
		},
	}

	params := a.toParams(req)
	require.Len(t, params.System, 1)
	assert.Equal(t, "be terse", params.System[0].Text)
	assert.Len(t, params.Messages, 2)
}

func TestToParams_OmitsSystemBlockWhenNoSystemMessage(t *testing.T) {
	a := &Adapter{model: anthropic.Model("claude-default")}
	params := a.toParams(chatmodel.Request{Messages: []chatmodel.Message{
		{Role: chatmodel.RoleUser, Content: "hi"},
	}})
	assert.Empty(t, params.System)
}

func TestToParams_DefaultsMaxTokensWhenUnset(t *testing.T) {
	a := &Adapter{model: anthropic.Model("claude-default")}
	params := a.toParams(chatmodel.Request{})
	assert.EqualValues(t, 4096, params.MaxTokens)
}

func TestToParams_PreservesExplicitMaxTokens(t *testing.T) {
	a := &Adapter{model: anthropic.Model("claude-default")}
	params := a.toParams(chatmodel.Request{MaxTokens: 512})
	assert.EqualValues(t, 512, params.MaxTokens)
}

func TestToParams_RequestModelOverridesDefault(t *testing.T) {
	a := &Adapter{model: anthropic.Model("claude-default")}
	params := a.toParams(chatmodel.Request{Model: "claude-override"})
	assert.Equal(t, anthropic.Model("claude-override"), params.Model)
}

func TestToParams_FallsBackToDefaultModel(t *testing.T) {
	a := &Adapter{model: anthropic.Model("claude-default")}
	params := a.toParams(chatmodel.Request{})
	assert.Equal(t, anthropic.Model("claude-default"), params.Model)
}

func TestToParams_OmitsTemperatureWhenZero(t *testing.T) {
	a := &Adapter{model: anthropic.Model("claude-default")}
	var zeroValue anthropic.MessageNewParams
	params := a.toParams(chatmodel.Request{})
	assert.Equal(t, zeroValue.Temperature, params.Temperature, "an unset temperature must match the params zero value")
}

func TestToParams_SetsTemperatureWhenNonZero(t *testing.T) {
	a := &Adapter{model: anthropic.Model("claude-default")}
	params := a.toParams(chatmodel.Request{Temperature: 0.4})
	assert.Equal(t, anthropic.Float(0.4), params.Temperature)
}

func TestToParams_BindsToolDefinitions(t *testing.T) {
	a := &Adapter{model: anthropic.Model("claude-default")}
	params := a.toParams(chatmodel.Request{Tools: []chatmodel.ToolDef{
		{Name: "search", Description: "look things up"},
	}})
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "search", params.Tools[0].OfTool.Name)
}

func TestToParams_ToolRoleBecomesUserToolResult(t *testing.T) {
	a := &Adapter{model: anthropic.Model("claude-default")}
	params := a.toParams(chatmodel.Request{Messages: []chatmodel.Message{
		{Role: chatmodel.RoleTool, Content: "42", ToolCallID: "call-1"},
	}})
	require.Len(t, params.Messages, 1)
	assert.Equal(t, anthropic.NewUserMessage(anthropic.NewToolResultBlock("call-1", "42", false)), params.Messages[0])
}
