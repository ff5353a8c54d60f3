package bus

import (
	"context"
	"sync"
	"time"

	"github.com/tlum/assistant-backend/core"
	"github.com/tlum/assistant-backend/logging"
)

// DefaultGatherWindow bounds how long a request waits for agent notes. Small
// on purpose: it keeps end-to-end latency low while giving fast side-agents a
// chance to contribute. Tunable, not a protocol guarantee.
const DefaultGatherWindow = 400 * time.Millisecond

// Collector gathers AGENT_NOTE events for in-flight requests. It holds a
// single subscription to the shared stream and demultiplexes centrally:
// every stream event fans out to the per-request waiter keyed by its
// correlation id, so concurrent requests never consume each other's messages.
type Collector struct {
	stream Stream
	logger logging.Logger

	mu      sync.Mutex
	waiters map[string]chan core.Event
	started bool
}

// CollectorOptions configure a Collector.
type CollectorOptions struct {
	Logger logging.Logger
}

// NewCollector creates a Collector on top of the given stream. Call Start
// before the first Collect.
func NewCollector(stream Stream, optFns ...func(o *CollectorOptions)) *Collector {
	opts := CollectorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Collector{
		stream:  stream,
		logger:  opts.Logger,
		waiters: make(map[string]chan core.Event),
	}
}

// Start subscribes to the stream and launches the demultiplexing loop. It
// runs until ctx is cancelled. Calling Start more than once is a no-op.
func (c *Collector) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	events, err := c.stream.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for ev := range events {
			c.dispatch(ev)
		}
	}()
	return nil
}

// dispatch routes a note event to its waiter, if one is registered. Events
// without a waiter (other requests' traffic, non-note types) are ignored; a
// full waiter buffer drops the note rather than stalling the loop.
func (c *Collector) dispatch(ev core.Event) {
	if !ev.IsAgentNote() {
		return
	}
	c.mu.Lock()
	waiter, ok := c.waiters[ev.ID]
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case waiter <- ev:
	default:
		c.logger.Warn("bus.collector.waiter_full", "correlation_id", ev.ID)
	}
}

// Watch registers a waiter for correlationID immediately, before any waiting
// begins. Callers that publish after Watch and collect afterwards never lose
// a note to the gap between publishing and gathering. Every Watch must end in
// Collect or Cancel, or the waiter entry leaks.
func (c *Collector) Watch(correlationID string) *Watch {
	waiter := make(chan core.Event, 16)
	c.mu.Lock()
	c.waiters[correlationID] = waiter
	c.mu.Unlock()
	return &Watch{collector: c, correlationID: correlationID, events: waiter}
}

// Collect registers a waiter and gathers note texts published against
// correlationID until the window expires or ctx is cancelled. Timing out with
// zero notes is success, never an error; the caller gets whatever arrived in
// time. Use Watch + Watch.Collect when notes may race the registration.
func (c *Collector) Collect(ctx context.Context, correlationID string, window time.Duration) []string {
	return c.Watch(correlationID).Collect(ctx, window)
}

func (c *Collector) remove(correlationID string) {
	c.mu.Lock()
	delete(c.waiters, correlationID)
	c.mu.Unlock()
}

// Watch is a registered interest in one request's notes. Notes arriving
// between registration and Collect buffer in the waiter channel.
type Watch struct {
	collector     *Collector
	correlationID string
	events        chan core.Event
}

// Cancel deregisters the watch without gathering. For callers that bail out
// before the gather phase.
func (w *Watch) Cancel() {
	w.collector.remove(w.correlationID)
}

// Collect gathers note texts until the window expires or ctx is cancelled,
// then deregisters the watch.
func (w *Watch) Collect(ctx context.Context, window time.Duration) []string {
	defer w.collector.remove(w.correlationID)
	if window <= 0 {
		window = DefaultGatherWindow
	}

	timer := time.NewTimer(window)
	defer timer.Stop()

	var notes []string
	for {
		select {
		case ev := <-w.events:
			if text := ev.Text(); text != "" {
				notes = append(notes, text)
			}
		case <-timer.C:
			return notes
		case <-ctx.Done():
			return notes
		}
	}
}
