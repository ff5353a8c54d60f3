package agent

import (
	"context"

	"github.com/tlum/assistant-backend/bus"
	"github.com/tlum/assistant-backend/core"
	"github.com/tlum/assistant-backend/logging"
)

// Dispatcher bridges the event stream and the agent registry: it consumes
// user-message events, fans them out, and publishes each contribution back
// as an agent note on the same correlation id, where the collector picks it
// up. It runs as a background consumer alongside the request path.
type Dispatcher struct {
	stream   bus.Stream
	registry *Registry
	logger   logging.Logger
}

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	Logger logging.Logger
}

// NewDispatcher wires a dispatcher to a stream and registry.
func NewDispatcher(stream bus.Stream, registry *Registry, optFns ...func(o *DispatcherOptions)) *Dispatcher {
	opts := DispatcherOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Dispatcher{stream: stream, registry: registry, logger: opts.Logger}
}

// Start subscribes to the stream and consumes events until ctx is canceled
// or the subscription channel closes. Each user message is handled on its
// own goroutine so a slow agent never delays later messages.
func (d *Dispatcher) Start(ctx context.Context) error {
	events, err := d.stream.Subscribe(ctx)
	if err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Type != core.EventNewUserMessage {
					continue
				}
				go d.handle(ctx, ev)
			}
		}
	}()
	return nil
}

// handle fans one user message out to the registry and publishes every
// contribution as an agent note. Handler failures are already logged by the
// registry; publish failures are logged here. Neither aborts the batch.
func (d *Dispatcher) handle(ctx context.Context, ev core.Event) {
	input := core.NewEvent(ev.ID, core.EventUserInput, ev.Payload)

	responses, failures := d.registry.Handle(ctx, input)
	if len(failures) > 0 {
		d.logger.Debug("dispatch.partial_failure", "correlation_id", ev.ID, "failed", len(failures))
	}

	for _, resp := range responses {
		note := core.NewAgentNoteEvent(ev.ID, resp.Content)
		if err := d.stream.Publish(ctx, note); err != nil {
			d.logger.Warn("dispatch.publish_note_failed",
				"correlation_id", ev.ID, "agent", resp.AgentName, "error", err.Error())
		}
	}
}

// Dispatch runs one event through the registry synchronously and applies the
// tie-break policy, preferring the mediator's synthesis when present. It is
// the direct-invocation path for callers that hold the event in hand rather
// than reading it off the stream.
func (d *Dispatcher) Dispatch(ctx context.Context, event core.Event) (core.AgentResponse, bool) {
	responses, _ := d.registry.Handle(ctx, event)
	return Select(responses, MediatorName)
}
