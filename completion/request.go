package completion

import (
	"fmt"

	"github.com/tlum/assistant-backend/model"
)

// IncomingMessage is one role-tagged entry of the inbound request body.
type IncomingMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolSpec names a tool the caller wants advertised to the generation call.
// Only the function name is honored; schemas come from the local registry.
type ToolSpec struct {
	Type     string `json:"type,omitempty"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

// Request is the inbound completion request body. Unknown fields are ignored.
type Request struct {
	Messages    []IncomingMessage `json:"messages"`
	Model       string            `json:"model,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	Stream      bool              `json:"stream,omitempty"`
	Tools       []ToolSpec        `json:"tools,omitempty"`
	SessionID   string            `json:"session_id,omitempty"`
}

// LastUserMessage returns the content of the last user-role message, or a
// validation error when the request carries none.
func (r *Request) LastUserMessage() (string, error) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content, nil
		}
	}
	return "", fmt.Errorf("%w: no user message present", ErrValidation)
}

// RequestedToolNames returns the set of tool names the caller asked for.
func (r *Request) RequestedToolNames() map[string]bool {
	if len(r.Tools) == 0 {
		return nil
	}
	names := make(map[string]bool, len(r.Tools))
	for _, t := range r.Tools {
		if t.Function.Name != "" {
			names[t.Function.Name] = true
		}
	}
	return names
}

// outboundMessages converts the request body into normalized model messages.
func (r *Request) outboundMessages() []model.Message {
	out := make([]model.Message, 0, len(r.Messages)+1)
	for _, msg := range r.Messages {
		out = append(out, model.Message{Role: msg.Role, Content: msg.Content})
	}
	return out
}
