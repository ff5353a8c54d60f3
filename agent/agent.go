package agent

import (
	"context"

	"github.com/tlum/assistant-backend/core"
)

// Agent is a handler unit that may contribute a response to an event.
//
// Implementations must:
//   - Keep CanHandle fast and free of side effects; it runs synchronously on
//     the dispatch path for every event
//   - Respect ctx cancellation inside Handle
//   - Return (nil, nil) from Handle when they have nothing to contribute
type Agent interface {
	// Name identifies the agent; it is attached to every response it produces.
	Name() string

	// CanHandle reports whether this agent should see the event.
	CanHandle(event core.Event) bool

	// Handle processes the event and returns a response, or nil for none.
	Handle(ctx context.Context, event core.Event) (*core.AgentResponse, error)
}
