package agent

import (
	"context"
	"strings"

	"github.com/tlum/assistant-backend/core"
	"github.com/tlum/assistant-backend/model"
)

const executionPrompt = "You are the ExecutionAgent: you interpret user requests to move the current plan forward."

// ExecutionAgent turns user input into a concrete next step via one
// generation call.
type ExecutionAgent struct {
	model       model.Model
	temperature float64
}

// NewExecutionAgent constructs an ExecutionAgent backed by the given model.
func NewExecutionAgent(m model.Model) *ExecutionAgent {
	return &ExecutionAgent{model: m, temperature: 0.3}
}

// Name implements Agent.
func (a *ExecutionAgent) Name() string { return "ExecutionAgent" }

// CanHandle implements Agent.
func (a *ExecutionAgent) CanHandle(event core.Event) bool {
	return event.Type == core.EventUserInput
}

// Handle implements Agent.
func (a *ExecutionAgent) Handle(ctx context.Context, event core.Event) (*core.AgentResponse, error) {
	resp, err := a.model.Generate(ctx, model.Request{
		Messages: []model.Message{
			{Role: "system", Content: executionPrompt},
			{Role: "user", Content: event.Text()},
		},
		Temperature: a.temperature,
	})
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return nil, nil
	}
	return &core.AgentResponse{AgentName: a.Name(), Content: content}, nil
}
