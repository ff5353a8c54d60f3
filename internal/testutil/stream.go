package testutil

import (
	"context"
	"sync"

	"github.com/tlum/assistant-backend/core"
)

// FakeStream is an in-memory loopback implementation of bus.Stream. Every
// published event is recorded and fanned out to all active subscribers.
type FakeStream struct {
	mu        sync.Mutex
	published []core.Event
	subs      []chan core.Event
	closed    bool
}

// NewFakeStream creates an empty fake stream.
func NewFakeStream() *FakeStream {
	return &FakeStream{}
}

// Publish records the event and delivers it to every subscriber.
func (s *FakeStream) Publish(_ context.Context, event core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, event)
	for _, sub := range s.subs {
		select {
		case sub <- event:
		default: // a stalled test subscriber must not deadlock Publish
		}
	}
	return nil
}

// Subscribe returns a buffered channel receiving all subsequently published events.
func (s *FakeStream) Subscribe(_ context.Context) (<-chan core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan core.Event, 64)
	s.subs = append(s.subs, ch)
	return ch, nil
}

// Close closes all subscriber channels.
func (s *FakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, sub := range s.subs {
		close(sub)
	}
	s.subs = nil
	return nil
}

// Published returns a snapshot of everything published so far.
func (s *FakeStream) Published() []core.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Event, len(s.published))
	copy(out, s.published)
	return out
}

// PublishedOfType filters the published snapshot by type tag.
func (s *FakeStream) PublishedOfType(eventType string) []core.Event {
	var out []core.Event
	for _, ev := range s.Published() {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}
