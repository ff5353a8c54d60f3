package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent("corr-1", EventNewUserMessage, map[string]any{"text": "hello"})
	assert.Equal(t, "corr-1", e.ID)
	assert.Equal(t, EventNewUserMessage, e.Type)
	assert.Equal(t, "hello", e.Text())
	assert.False(t, e.Timestamp.IsZero())
}

func TestEventText_Missing(t *testing.T) {
	e := NewEvent("corr-1", EventBotReply, map[string]any{"other": 42})
	assert.Equal(t, "", e.Text())

	e = NewEvent("corr-1", EventBotReply, nil)
	assert.Equal(t, "", e.Text())
}

func TestIsAgentNote(t *testing.T) {
	assert.True(t, NewAgentNoteEvent("c", "n").IsAgentNote())
	assert.True(t, NewEvent("c", "AGENT_NOTE_PLAN", nil).IsAgentNote())
	assert.False(t, NewUserMessageEvent("c", "hi").IsAgentNote())
	assert.False(t, NewEvent("c", "AGENT", nil).IsAgentNote())
}

func TestNewCorrelationID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewCorrelationID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "correlation id repeated")
		seen[id] = true
	}
}

func TestEventJSONRoundTrip(t *testing.T) {
	e := NewUserMessageEvent("corr-2", "what is the plan?")
	data, err := json.Marshal(e)
	assert.NoError(t, err)

	var got Event
	assert.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.Type, got.Type)
	assert.Equal(t, "what is the plan?", got.Text())
}
