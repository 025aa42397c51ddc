// Package bedrockadapter implements chatmodel.Model against Amazon
// Bedrock's Converse API via aws-sdk-go-v2/service/bedrockruntime, grounded
// on goadesign-goa-ai's adapter-per-provider split in runtime/agent/model.
// Bedrock's Converse streaming emits smithy-go event-stream frames, handled
// through the SDK's generated event reader rather than a hand-rolled parser.
package bedrockadapter

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go/document"

	"github.com/supervisorrt/orchestrator/capability/chatmodel"
)

// Adapter wraps a Bedrock runtime client as a chatmodel.Model.
type Adapter struct {
	client       *bedrockruntime.Client
	defaultModel string
}

// New builds an Adapter over an already-configured Bedrock client.
func New(client *bedrockruntime.Client, defaultModel string) *Adapter {
	return &Adapter{client: client, defaultModel: defaultModel}
}

func (a *Adapter) toConverse(req chatmodel.Request) (string, []types.Message, []types.SystemContentBlock) {
	model := a.defaultModel
	if req.Model != "" {
		model = req.Model
	}
	var system []types.SystemContentBlock
	msgs := make([]types.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case chatmodel.RoleSystem:
			system = append(system, &types.SystemContentBlockMemberText{Value: m.Content})
		case chatmodel.RoleUser:
			msgs = append(msgs, types.Message{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})
		case chatmodel.RoleAssistant:
			msgs = append(msgs, types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})
		case chatmodel.RoleTool:
			msgs = append(msgs, types.Message{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberToolResult{
					Value: types.ToolResultBlock{
						ToolUseId: aws.String(m.ToolCallID),
						Content:   []types.ToolResultContentBlock{&types.ToolResultContentBlockMemberText{Value: m.Content}},
					},
				}},
			})
		}
	}
	return model, msgs, system
}

func toolConfig(tools []chatmodel.ToolDef) *types.ToolConfiguration {
	if len(tools) == 0 {
		return nil
	}
	cfg := &types.ToolConfiguration{}
	for _, t := range tools {
		cfg.Tools = append(cfg.Tools, &types.ToolMemberToolSpec{
			Value: types.ToolSpecification{
				Name:        aws.String(t.Name),
				Description: aws.String(t.Description),
				InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(t.Parameters)},
			},
		})
	}
	return cfg
}

// Invoke implements chatmodel.Model.
func (a *Adapter) Invoke(ctx context.Context, req chatmodel.Request) (chatmodel.Response, error) {
	model, msgs, system := a.toConverse(req)
	out, err := a.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:    aws.String(model),
		Messages:   msgs,
		System:     system,
		ToolConfig: toolConfig(req.Tools),
	})
	if err != nil {
		return chatmodel.Response{}, fmt.Errorf("bedrockadapter: invoke: %w", err)
	}
	resp := chatmodel.Response{}
	if out.Usage != nil {
		resp.TokensUsed = int(aws.ToInt32(out.Usage.TotalTokens))
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return resp, nil
	}
	for _, block := range msg.Value.Content {
		switch b := block.(type) {
		case *types.ContentBlockMemberText:
			resp.Content += b.Value
		case *types.ContentBlockMemberToolUse:
			args, _ := b.Value.Input.MarshalSmithyDocument()
			resp.ToolCalls = append(resp.ToolCalls, chatmodel.ToolCall{
				ID:        aws.ToString(b.Value.ToolUseId),
				Name:      aws.ToString(b.Value.Name),
				Arguments: args,
			})
		}
	}
	return resp, nil
}

// Stream implements chatmodel.Model via Bedrock's ConverseStream.
func (a *Adapter) Stream(ctx context.Context, req chatmodel.Request) (chatmodel.Stream, error) {
	model, msgs, system := a.toConverse(req)
	out, err := a.client.ConverseStream(ctx, &bedrockruntime.ConverseStreamInput{
		ModelId:    aws.String(model),
		Messages:   msgs,
		System:     system,
		ToolConfig: toolConfig(req.Tools),
	})
	if err != nil {
		return nil, fmt.Errorf("bedrockadapter: stream: %w", err)
	}
	return &streamHandle{stream: out.GetStream()}, nil
}

type streamHandle struct {
	stream *bedrockruntime.ConverseStreamEventStream
}

func (h *streamHandle) Recv() (chatmodel.Chunk, error) {
	event, ok := <-h.stream.Events()
	if !ok {
		if err := h.stream.Close(); err != nil {
			return chatmodel.Chunk{}, fmt.Errorf("bedrockadapter: stream closed with error: %w", err)
		}
		return chatmodel.Chunk{}, io.EOF
	}
	switch e := event.(type) {
	case *types.ConverseStreamOutputMemberContentBlockDelta:
		if d, ok := e.Value.Delta.(*types.ContentBlockDeltaMemberText); ok {
			return chatmodel.Chunk{Kind: chatmodel.ChunkText, Text: d.Value}, nil
		}
	case *types.ConverseStreamOutputMemberMessageStop:
		return chatmodel.Chunk{Kind: chatmodel.ChunkDone}, nil
	}
	return h.Recv()
}

func (h *streamHandle) Close() error {
	return h.stream.Close()
}
