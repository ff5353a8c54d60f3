// Package model defines the generation-call boundary: a provider-agnostic
// request/response shape plus the Model interface the orchestrator drives.
// Provider adapters live in subpackages (openai, anthropic); MockModel offers
// deterministic behavior for tests and examples.
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Message is a single role-tagged entry in the outbound conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant", "tool"
	Content string `json:"content"`

	// ToolCall is set on assistant messages that requested a tool invocation.
	ToolCall *ToolCall `json:"tool_call,omitempty"`
	// ToolCallID links a tool-role result message back to its request.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is a function invocation request surfaced by a model provider,
// unified across vendors so downstream logic does not branch per provider.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"` // JSON object of arguments
}

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a minimal JSON Schema object.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input produced by the orchestrator.
type Request struct {
	Messages    []Message        `json:"messages"`
	Temperature float64          `json:"temperature"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the outcome of one generation call. Exactly one of Content or
// ToolCall is meaningful: a tool call means the model elected to invoke a
// function instead of answering directly.
type Response struct {
	Content  string     `json:"content,omitempty"`
	ToolCall *ToolCall  `json:"tool_call,omitempty"`
	Usage    TokenUsage `json:"usage"`
	Model    string     `json:"model"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the orchestrator needs to drive generation.
// Implementations must be safe for concurrent use.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests and examples.
// Responses are keyed by the last user message; unknown prompts yield a
// deterministic echo. A queued tool call takes precedence over content.
// Safe for concurrent use, like every Model; agents sharing one instance
// invoke Generate from parallel goroutines.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	toolCalls []*ToolCall

	// Requests records every request seen, in order. Read it only after the
	// Generate calls of interest have returned. It grows without bound,
	// which is acceptable for the test and example scope this type serves.
	Requests []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock", SupportsTools: true},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a user prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// QueueToolCall makes the next Generate return the given tool call instead of
// content. Queued calls are consumed in FIFO order.
func (m *MockModel) QueueToolCall(tc *ToolCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolCalls = append(m.toolCalls, tc)
}

// Generate implements Model.
func (m *MockModel) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)

	if len(m.toolCalls) > 0 {
		tc := m.toolCalls[0]
		m.toolCalls = m.toolCalls[1:]
		return &Response{ToolCall: tc, Model: m.info.Name, Usage: TokenUsage{PromptTokens: 1, TotalTokens: 1}}, nil
	}

	var lastUser string
	for _, msg := range req.Messages {
		if msg.Role == "user" {
			lastUser = msg.Content
		}
	}
	if lastUser == "" {
		return nil, fmt.Errorf("no user message provided")
	}

	content := m.responses[lastUser]
	if content == "" {
		content = fmt.Sprintf("Mock response to: %s", lastUser)
	}
	usage := TokenUsage{
		PromptTokens:     len(strings.Fields(lastUser)),
		CompletionTokens: len(strings.Fields(content)),
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	return &Response{Content: content, Usage: usage, Model: m.info.Name}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
