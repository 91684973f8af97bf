package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/automaton-port/internal/domain/ai"
)

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Complete sends the full conversation plus tool definitions and returns the
// model's next message, tool calls included.
func (c *Client) Complete(ctx context.Context, messages []domai.Message, tools []domai.ToolDefinition) (domai.Message, error) {
	model := c.Model
	if model == "" {
		model = openai.GPT4o
	}
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toChatMessages(messages),
		Tools:    toTools(tools),
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return domai.Message{}, fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
		}
		return domai.Message{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domai.Message{}, fmt.Errorf("chat completion returned no choices")
	}

	return fromChatMessage(resp.Choices[0].Message), nil
}

func toChatMessages(messages []domai.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		cm := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			cm.ToolCalls = append(cm.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, cm)
	}
	return out
}

func toTools(defs []domai.ToolDefinition) []openai.Tool {
	if len(defs) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return out
}

func fromChatMessage(m openai.ChatCompletionMessage) domai.Message {
	out := domai.Message{
		Role:    m.Role,
		Content: m.Content,
		Name:    m.Name,
	}
	for _, tc := range m.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, domai.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}
