package state

// Role identifies who produced a Message.
type Role string

const (
	// RoleUser marks end-user input.
	RoleUser Role = "user"
	// RoleAssistant marks agent/worker output.
	RoleAssistant Role = "assistant"
	// RoleSystem marks instructions or context injected ahead of a turn.
	RoleSystem Role = "system"
	// RoleTool marks a tool result returned to the model.
	RoleTool Role = "tool"
)

// Message is an immutable entry in the conversation. Content is opaque text;
// Author, when set, names the worker that produced an assistant message.
type Message struct {
	// Role is one of RoleUser, RoleAssistant, RoleSystem, RoleTool.
	Role Role
	// Content is the opaque message body.
	Content string
	// Author optionally names the worker that produced the message. Empty
	// for user/system/tool messages.
	Author string
	// ID optionally stabilizes the message for append-and-dedupe-by-id
	// merges (§3.5). When empty at append time, the reducer assigns a
	// synthetic id so every message has a stable key.
	ID string
}

// NewAssistantMessage builds an authored assistant message, the shape every
// worker's standard response builder appends on success or failure.
func NewAssistantMessage(author, content string) Message {
	return Message{Role: RoleAssistant, Content: content, Author: author}
}
