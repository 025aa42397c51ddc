// Package chatmodel defines the ChatModel capability (§6.1): invoke,
// stream, structured-output, and tool-binding against a large language
// model. Grounded on goadesign-goa-ai's runtime/agent/model.Client/Streamer
// contract, trimmed down and made adapter-agnostic so anthropicadapter,
// openaiadapter, and bedrockadapter can each implement it.
package chatmodel

import (
	"context"
	"encoding/json"
)

// Role identifies the speaker of a Message in a Request.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of a chat request, mirroring state.Message's shape
// without importing the state package (capability adapters must not depend
// on conversation state internals).
type Message struct {
	Role       Role
	Content    string
	ToolCallID string // set on RoleTool messages, echoes the call being answered
}

// ToolDef is a tool made available to the model for this call, the subset
// of toolsource.Spec a ChatModel needs to bind.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Request is one chat completion call.
type Request struct {
	Model       string
	Messages    []Message
	Tools       []ToolDef
	Temperature float64
	MaxTokens   int
	// StructuredSchema holds a JSON schema for the expected reply (§6.1
	// structured output). None of the adapters in this module reads it:
	// they send the request as free text, and Response.StructuredOut is
	// left empty.
	StructuredSchema json.RawMessage
}

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Response is a completed (non-streamed) model turn.
type Response struct {
	Content       string
	ToolCalls     []ToolCall
	StructuredOut json.RawMessage
	TokensUsed    int
}

// ChunkKind categorizes a streamed Chunk.
type ChunkKind string

const (
	ChunkText     ChunkKind = "text"
	ChunkToolCall ChunkKind = "tool_call"
	ChunkDone     ChunkKind = "done"
)

// Chunk is one piece of a streamed response.
type Chunk struct {
	Kind     ChunkKind
	Text     string
	ToolCall *ToolCall
}

// Stream is the handle returned by Model.Stream; callers Recv in a loop
// until io.EOF or an error, then Close.
type Stream interface {
	Recv() (Chunk, error)
	Close() error
}

// Model is the ChatModel capability. Every call takes a context so adapters
// can honor request deadlines and cancellation.
type Model interface {
	Invoke(ctx context.Context, req Request) (Response, error)
	Stream(ctx context.Context, req Request) (Stream, error)
}

// BindTools returns a copy of req with tools attached, the helper workers
// use instead of constructing Request literals inline (mirrors
// goadesign-goa-ai's model.Request builder style).
func (req Request) BindTools(tools ...ToolDef) Request {
	req.Tools = append(append([]ToolDef{}, req.Tools...), tools...)
	return req
}
