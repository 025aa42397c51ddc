// Package anthropicadapter implements chatmodel.Model against the Anthropic
// Messages API via github.com/anthropics/anthropic-sdk-go, grounded on
// goadesign-goa-ai's adapter-per-provider split in runtime/agent/model.
package anthropicadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
)

// Adapter wraps an Anthropic client as a chatmodel.Model.
type Adapter struct {
	client anthropic.Client
	model  anthropic.Model
}

// New builds an Adapter. apiKey may be empty to fall back to the SDK's
// ANTHROPIC_API_KEY environment lookup. defaultModel is used when a
// Request leaves Model empty.
func New(apiKey string, defaultModel anthropic.Model) *Adapter {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &Adapter{
		client: anthropic.NewClient(opts...),
		model:  defaultModel,
	}
}

func (a *Adapter) toParams(req chatmodel.Request) anthropic.MessageNewParams {
	model := a.model
	if req.Model != "" {
		model = anthropic.Model(req.Model)
	}
	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	var system string
	msgs := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case chatmodel.RoleSystem:
			system = m.Content
		case chatmodel.RoleUser:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case chatmodel.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		case chatmodel.RoleTool:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  msgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature != 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	for _, t := range req.Tools {
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{},
			},
		})
	}
	return params
}

// Invoke implements chatmodel.Model.
func (a *Adapter) Invoke(ctx context.Context, req chatmodel.Request) (chatmodel.Response, error) {
	msg, err := a.client.Messages.New(ctx, a.toParams(req))
	if err != nil {
		return chatmodel.Response{}, fmt.Errorf("anthropicadapter: invoke: %w", err)
	}
	resp := chatmodel.Response{TokensUsed: int(msg.Usage.InputTokens + msg.Usage.OutputTokens)}
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			resp.Content += block.Text
		case "tool_use":
			args, _ := json.Marshal(block.Input)
			resp.ToolCalls = append(resp.ToolCalls, chatmodel.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}
	return resp, nil
}

// Stream implements chatmodel.Model.
func (a *Adapter) Stream(ctx context.Context, req chatmodel.Request) (chatmodel.Stream, error) {
	s := a.client.Messages.NewStreaming(ctx, a.toParams(req))
	return &streamHandle{s: s}, nil
}

type streamHandle struct {
	s       *anthropic.MessageStream
	pending []chatmodel.Chunk
}

func (h *streamHandle) Recv() (chatmodel.Chunk, error) {
	if len(h.pending) > 0 {
		c := h.pending[0]
		h.pending = h.pending[1:]
		return c, nil
	}
	if !h.s.Next() {
		if err := h.s.Err(); err != nil {
			return chatmodel.Chunk{}, fmt.Errorf("anthropicadapter: stream: %w", err)
		}
		return chatmodel.Chunk{}, io.EOF
	}
	event := h.s.Current()
	switch event.Type {
	case "content_block_delta":
		if event.Delta.Text != "" {
			return chatmodel.Chunk{Kind: chatmodel.ChunkText, Text: event.Delta.Text}, nil
		}
	case "message_stop":
		return chatmodel.Chunk{Kind: chatmodel.ChunkDone}, nil
	}
	return h.Recv()
}

func (h *streamHandle) Close() error {
	return h.s.Close()
}
