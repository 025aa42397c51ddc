// Package openaiadapter implements chatmodel.Model against the OpenAI chat
// completions API via github.com/openai/openai-go, grounded on
// goadesign-goa-ai's adapter-per-provider split in runtime/agent/model.
package openaiadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
)

// Adapter wraps an OpenAI client as a chatmodel.Model.
type Adapter struct {
	client       openai.Client
	defaultModel openai.ChatModel
}

// New builds an Adapter. apiKey may be empty to fall back to the SDK's
// OPENAI_API_KEY environment lookup.
func New(apiKey string, defaultModel openai.ChatModel) *Adapter {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &Adapter{client: openai.NewClient(opts...), defaultModel: defaultModel}
}

func (a *Adapter) toParams(req chatmodel.Request) openai.ChatCompletionNewParams {
	model := a.defaultModel
	if req.Model != "" {
		model = openai.ChatModel(req.Model)
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case chatmodel.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case chatmodel.RoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		case chatmodel.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		case chatmodel.RoleTool:
			msgs = append(msgs, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: msgs,
	}
	if req.Temperature != 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens != 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	for _, t := range req.Tools {
		var schema map[string]any
		if len(t.Parameters) > 0 {
			_ = json.Unmarshal(t.Parameters, &schema)
		}
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  schema,
			},
		})
	}
	return params
}

// Invoke implements chatmodel.Model.
func (a *Adapter) Invoke(ctx context.Context, req chatmodel.Request) (chatmodel.Response, error) {
	resp, err := a.client.Chat.Completions.New(ctx, a.toParams(req))
	if err != nil {
		return chatmodel.Response{}, fmt.Errorf("openaiadapter: invoke: %w", err)
	}
	if len(resp.Choices) == 0 {
		return chatmodel.Response{}, fmt.Errorf("openaiadapter: invoke: empty choices")
	}
	choice := resp.Choices[0]
	out := chatmodel.Response{
		Content:    choice.Message.Content,
		TokensUsed: int(resp.Usage.TotalTokens),
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, chatmodel.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return out, nil
}

// Stream implements chatmodel.Model.
func (a *Adapter) Stream(ctx context.Context, req chatmodel.Request) (chatmodel.Stream, error) {
	s := a.client.Chat.Completions.NewStreaming(ctx, a.toParams(req))
	return &streamHandle{s: s}, nil
}

type streamHandle struct {
	s *openai.ChatCompletionsStream
}

func (h *streamHandle) Recv() (chatmodel.Chunk, error) {
	if !h.s.Next() {
		if err := h.s.Err(); err != nil {
			return chatmodel.Chunk{}, fmt.Errorf("openaiadapter: stream: %w", err)
		}
		return chatmodel.Chunk{}, io.EOF
	}
	chunk := h.s.Current()
	if len(chunk.Choices) == 0 {
		return h.Recv()
	}
	delta := chunk.Choices[0].Delta
	if delta.Content != "" {
		return chatmodel.Chunk{Kind: chatmodel.ChunkText, Text: delta.Content}, nil
	}
	if chunk.Choices[0].FinishReason != "" {
		return chatmodel.Chunk{Kind: chatmodel.ChunkDone}, nil
	}
	return h.Recv()
}

func (h *streamHandle) Close() error {
	return h.s.Close()
}
