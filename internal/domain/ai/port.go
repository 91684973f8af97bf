package ai

import (
	"context"
	"encoding/json"
)

// Message roles, provider-neutral
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one chat turn. Assistant messages may carry tool calls;
// tool messages answer them via ToolCallID.
type Message struct {
	Role       string
	Content    string
	Name       string
	ToolCallID string
	ToolCalls  []ToolCall
}

// ToolCall is a function invocation requested by the model.
// Arguments is the raw JSON argument object.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolDefinition advertises a callable tool to the model.
// Parameters is a JSON schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

type Client interface {
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (Message, error)
}
