package core

import (
	"time"

	"github.com/google/uuid"
)

// Event type tags used by the router core. AGENT_NOTE is a prefix: helper
// agents may publish refinements such as "AGENT_NOTE_PLAN"; the collector
// matches on the prefix alone.
const (
	// EventUserInput tags in-process events dispatched to the agent registry.
	EventUserInput = "user_input"

	// EventNewUserMessage is published to the shared stream when a completion
	// request arrives, before the gather window opens.
	EventNewUserMessage = "NEW_USER_MSG"

	// EventAgentNotePrefix marks side-channel contributions from helper
	// agents, correlated back to a request by Event.ID.
	EventAgentNotePrefix = "AGENT_NOTE"

	// EventBotReply is published with the final assistant text.
	EventBotReply = "BOT_REPLY"
)

// Event is the unit of communication between the orchestrator, in-process
// agents and external agents on the shared stream. Once constructed it must
// be treated as immutable.
//
// ID carries the correlation identifier for stream events; it is the sole
// join key between a request and asynchronous contributions to it.
type Event struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id,omitempty"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent constructs an event with the given correlation id, type tag and
// payload, stamped with the current UTC time.
func NewEvent(id, eventType string, payload map[string]any) Event {
	return Event{
		ID:        id,
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessageEvent builds the NEW_USER_MSG event announcing a fresh user
// turn to the shared stream.
func NewUserMessageEvent(correlationID, text string) Event {
	return NewEvent(correlationID, EventNewUserMessage, map[string]any{"text": text})
}

// NewBotReplyEvent builds the BOT_REPLY event carrying the final assistant text.
func NewBotReplyEvent(correlationID, text string) Event {
	return NewEvent(correlationID, EventBotReply, map[string]any{"text": text})
}

// NewAgentNoteEvent builds an AGENT_NOTE event attributing a side-channel
// contribution to the given correlation id.
func NewAgentNoteEvent(correlationID, note string) Event {
	return NewEvent(correlationID, EventAgentNotePrefix, map[string]any{"text": note})
}

// Text returns the "text" payload entry, or "" when absent or non-string.
func (e Event) Text() string {
	s, _ := e.Payload["text"].(string)
	return s
}

// IsAgentNote reports whether the event's type tag carries the AGENT_NOTE prefix.
func (e Event) IsAgentNote() bool {
	return len(e.Type) >= len(EventAgentNotePrefix) && e.Type[:len(EventAgentNotePrefix)] == EventAgentNotePrefix
}

// NewCorrelationID mints an opaque 128-bit token unique for the lifetime of
// the process. It is embedded in every event emitted for one request.
func NewCorrelationID() string { return uuid.NewString() }
