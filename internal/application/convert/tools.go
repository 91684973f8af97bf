package convert

import (
	"encoding/json"
	"fmt"

	domai "github.com/bryanwahyu/automaton-port/internal/domain/ai"
)

// toolFunc handles one tool invocation. The returned value is serialized to
// JSON and handed back to the model as the tool result.
type toolFunc func(args json.RawMessage) (any, error)

type toolSet struct {
	defs     []domai.ToolDefinition
	handlers map[string]toolFunc
}

func newToolSet() *toolSet {
	return &toolSet{handlers: map[string]toolFunc{}}
}

func (t *toolSet) register(name, description string, params json.RawMessage, fn toolFunc) {
	if _, exists := t.handlers[name]; exists {
		panic(fmt.Sprintf("duplicate tool: %s", name))
	}
	t.defs = append(t.defs, domai.ToolDefinition{
		Name:        name,
		Description: description,
		Parameters:  params,
	})
	t.handlers[name] = fn
}

func (t *toolSet) Definitions() []domai.ToolDefinition { return t.defs }

// Dispatch runs the requested tool and wraps the outcome as a tool-role
// message. Failures are reported to the model as data, never as a crash.
func (t *toolSet) Dispatch(call domai.ToolCall) domai.Message {
	reply := func(v any) domai.Message {
		data, err := json.Marshal(v)
		if err != nil {
			data = []byte(`{"error":"cannot serialize tool result"}`)
		}
		return domai.Message{
			Role:       domai.RoleTool,
			Name:       call.Name,
			ToolCallID: call.ID,
			Content:    string(data),
		}
	}

	fn, ok := t.handlers[call.Name]
	if !ok {
		return reply(map[string]string{"error": "unknown tool: " + call.Name})
	}

	args := json.RawMessage(call.Arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	result, err := fn(args)
	if err != nil {
		return reply(map[string]string{"error": err.Error()})
	}
	return reply(result)
}

// JSON schemas for the project tools. Small enough to keep as literals.
var (
	noParams = json.RawMessage(`{"type":"object","properties":{}}`)

	readFileParams = json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "a relative path to the file in the project directory"}
		},
		"required": ["path"]
	}`)

	writeFileParams = json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "a relative path to the file in the project directory"},
			"contents": {"type": "string", "description": "new contents of a file"}
		},
		"required": ["path", "contents"]
	}`)
)

type readFileArgs struct {
	Path string `json:"path"`
}

type writeFileArgs struct {
	Path     string `json:"path"`
	Contents string `json:"contents"`
}
