package openaiadapter

import (
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
)

// toParams needs no network client, so these exercise it directly over a
// zero-value Adapter carrying only the default model.

func TestToParams_MapsEveryRoleToItsMessageConstructor(t *testing.T) {
	a := &Adapter{defaultModel: openai.ChatModel("gpt-default")}
	params := a.toParams(chatmodel.Request{Messages: []chatmodel.Message{
		{Role: chatmodel.RoleSystem, Content: "be terse"},
		{Role: chatmodel.RoleUser, Content: "hi"},
		{Role: chatmodel.RoleAssistant, Content: "hello"},
		{Role: chatmodel.RoleTool, Content: "42", ToolCallID: "call-1"},
	}})
	require.Len(t, params.Messages, 4)
	assert.Equal(t, openai.SystemMessage("be terse"), params.Messages[0])
	assert.Equal(t, openai.UserMessage("hi"), params.Messages[1])
	assert.Equal(t, openai.AssistantMessage("hello"), params.Messages[2])
	assert.Equal(t, openai.ToolMessage("42", "call-1"), params.Messages[3])
}

func TestToParams_RequestModelOverridesDefault(t *testing.T) {
	a := &Adapter{defaultModel: openai.ChatModel("gpt-default")}
	params := a.toParams(chatmodel.Request{Model: "gpt-override"})
	assert.Equal(t, openai.ChatModel("gpt-override"), params.Model)
}

func TestToParams_FallsBackToDefaultModel(t *testing.T) {
	a := &Adapter{defaultModel: openai.ChatModel("gpt-default")}
	params := a.toParams(chatmodel.Request{})
	assert.Equal(t, openai.ChatModel("gpt-default"), params.Model)
}

func TestToParams_OmitsMaxTokensWhenZero(t *testing.T) {
	a := &Adapter{defaultModel: openai.ChatModel("gpt-default")}
	var zeroValue openai.ChatCompletionNewParams
	params := a.toParams(chatmodel.Request{})
	assert.Equal(t, zeroValue.MaxTokens, params.MaxTokens)
}

func TestToParams_SetsMaxTokensWhenNonZero(t *testing.T) {
	a := &Adapter{defaultModel: openai.ChatModel("gpt-default")}
	params := a.toParams(chatmodel.Request{MaxTokens: 256})
	assert.Equal(t, openai.Int(256), params.MaxTokens)
}

func TestToParams_SetsTemperatureWhenNonZero(t *testing.T) {
	a := &Adapter{defaultModel: openai.ChatModel("gpt-default")}
	params := a.toParams(chatmodel.Request{Temperature: 0.7})
	assert.Equal(t, openai.Float(0.7), params.Temperature)
}

func TestToParams_BindsToolDefinitionsWithParsedSchema(t *testing.T) {
	a := &Adapter{defaultModel: openai.ChatModel("gpt-default")}
	params := a.toParams(chatmodel.Request{Tools: []chatmodel.ToolDef{
		{Name: "search", Description: "look things up", Parameters: []byte(`{"type":"object"}`)},
	}})
	require.Len(t, params.Tools, 1)
	fn := params.Tools[0].Function
	assert.Equal(t, "search", fn.Name)
	assert.Equal(t, map[string]any{"type": "object"}, map[string]any(fn.Parameters))
}

func TestToParams_ToolWithoutSchemaLeavesParametersNil(t *testing.T) {
	a := &Adapter{defaultModel: openai.ChatModel("gpt-default")}
	params := a.toParams(chatmodel.Request{Tools: []chatmodel.ToolDef{
		{Name: "noop", Description: "does nothing"},
	}})
	require.Len(t, params.Tools, 1)
	assert.Nil(t, params.Tools[0].Function.Parameters)
}
