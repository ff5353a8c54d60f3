package agent

import (
	"context"
	"strings"

	"github.com/tlum/assistant-backend/core"
	"github.com/tlum/assistant-backend/model"
)

const plannerPrompt = "You are the PlannerAgent: maintain and update a generic plan graph given user inputs."

// PlannerAgent contributes when the user talks about planning.
type PlannerAgent struct {
	model       model.Model
	temperature float64
}

// NewPlannerAgent constructs a PlannerAgent backed by the given model.
func NewPlannerAgent(m model.Model) *PlannerAgent {
	return &PlannerAgent{model: m, temperature: 0.3}
}

// Name implements Agent.
func (a *PlannerAgent) Name() string { return "PlannerAgent" }

// CanHandle implements Agent.
func (a *PlannerAgent) CanHandle(event core.Event) bool {
	return event.Type == core.EventUserInput &&
		strings.Contains(strings.ToLower(event.Text()), "plan")
}

// Handle implements Agent.
func (a *PlannerAgent) Handle(ctx context.Context, event core.Event) (*core.AgentResponse, error) {
	resp, err := a.model.Generate(ctx, model.Request{
		Messages: []model.Message{
			{Role: "system", Content: plannerPrompt},
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
