package agent

import (
	"fmt"
	"sync"

	"context"

	"github.com/tlum/assistant-backend/core"
	"github.com/tlum/assistant-backend/logging"
)

// HandlerError records one agent's failure during a fan-out. The registry
// collects these alongside the successful responses instead of aborting the
// whole gather.
type HandlerError struct {
	AgentName string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("agent %s failed: %v", e.AgentName, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Registry holds an ordered list of agents and dispatches events to them.
// Build it once at startup; it is read-only afterwards and safe for
// concurrent use.
type Registry struct {
	agents []Agent
	logger logging.Logger
}

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	Logger logging.Logger
}

// NewRegistry creates a registry with agents in priority order. Order matters:
// it determines result ordering and the fallback pick in Select.
func NewRegistry(agents []Agent, optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{agents: agents, logger: opts.Logger}
}

// Handle fans the event out to every agent whose CanHandle returns true,
// running all scheduled handlers concurrently and returning only after every
// one has completed.
//
// The response slice preserves registration order regardless of completion
// order, so downstream selection is deterministic. Nil responses are filtered
// out. Failures are isolated per agent and returned as the second value; a
// failing handler never suppresses its siblings' responses.
func (r *Registry) Handle(ctx context.Context, event core.Event) ([]core.AgentResponse, []*HandlerError) {
	type slot struct {
		resp *core.AgentResponse
		err  error
	}

	scheduled := make([]int, 0, len(r.agents))
	for i, a := range r.agents {
		if a.CanHandle(event) {
			scheduled = append(scheduled, i)
		}
	}
	if len(scheduled) == 0 {
		return nil, nil
	}

	slots := make([]slot, len(r.agents))
	var wg sync.WaitGroup
	for _, i := range scheduled {
		wg.Add(1)
		go func(idx int, a Agent) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					slots[idx].err = fmt.Errorf("panic: %v", rec)
				}
			}()
			slots[idx].resp, slots[idx].err = a.Handle(ctx, event)
		}(i, r.agents[i])
	}
	wg.Wait()

	var responses []core.AgentResponse
	var failures []*HandlerError
	for _, i := range scheduled {
		if slots[i].err != nil {
			r.logger.Warn("agent.handle.failed", "agent", r.agents[i].Name(), "error", slots[i].err.Error())
			failures = append(failures, &HandlerError{AgentName: r.agents[i].Name(), Err: slots[i].err})
			continue
		}
		if slots[i].resp != nil {
			responses = append(responses, *slots[i].resp)
		}
	}
	return responses, failures
}

// Select applies the tie-break policy to a fan-out result: prefer the
// response from the named final-synthesis agent, else the first response in
// registration order, else empty.
func Select(responses []core.AgentResponse, preferred string) (core.AgentResponse, bool) {
	for _, resp := range responses {
		if resp.AgentName == preferred {
			return resp, true
		}
	}
	if len(responses) > 0 {
		return responses[0], true
	}
	return core.AgentResponse{}, false
}
