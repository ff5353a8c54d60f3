package agent

import (
	"context"

	"github.com/tlum/assistant-backend/core"
)

// MediatorName is the designated final-synthesis agent for Select.
const MediatorName = "MediatorAgent"

// MediatorAgent is always available so the fan-out never comes back empty.
// Register it last; Select prefers its response when no richer agent answered
// with its name.
type MediatorAgent struct {
	fallback string
}

// NewMediatorAgent constructs a MediatorAgent with the default fallback reply.
func NewMediatorAgent() *MediatorAgent {
	return &MediatorAgent{fallback: "How can I help with that?"}
}

// Name implements Agent.
func (a *MediatorAgent) Name() string { return MediatorName }

// CanHandle implements Agent.
func (a *MediatorAgent) CanHandle(event core.Event) bool {
	return event.Type == core.EventUserInput
}

// Handle implements Agent.
func (a *MediatorAgent) Handle(_ context.Context, _ core.Event) (*core.AgentResponse, error) {
	return &core.AgentResponse{AgentName: a.Name(), Content: a.fallback}, nil
}
