package completion

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlum/assistant-backend/bus"
	"github.com/tlum/assistant-backend/core"
	"github.com/tlum/assistant-backend/internal/testutil"
	"github.com/tlum/assistant-backend/model"
	"github.com/tlum/assistant-backend/tool"
	"github.com/tlum/assistant-backend/trace"
)

type fixture struct {
	stream *testutil.FakeStream
	model  *model.MockModel
	tools  *tool.Registry
	traces *trace.InMemoryStore
	orch   *Orchestrator
}

func newFixture(t *testing.T, extraTools ...tool.Tool) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	stream := testutil.NewFakeStream()
	collector := bus.NewCollector(stream)
	require.NoError(t, collector.Start(ctx))

	m := model.NewMockModel("mock-model")
	tools := tool.NewRegistry(extraTools)
	traces := trace.NewInMemoryStore()

	orch := NewOrchestrator(stream, collector, tools, m, func(o *OrchestratorOptions) {
		o.GatherWindow = 100 * time.Millisecond
		o.Traces = traces
	})
	t.Cleanup(cancel)
	return &fixture{stream: stream, model: m, tools: tools, traces: traces, orch: orch}
}

func userRequest(text string) *Request {
	return &Request{Messages: []IncomingMessage{{Role: "user", Content: text}}}
}

func TestComplete_SimpleRequest(t *testing.T) {
	f := newFixture(t)
	f.model.AddResponse("hello", "hi there!")

	result, err := f.orch.Complete(context.Background(), userRequest("hello"))
	require.NoError(t, err)

	// Exactly one generation call, envelope mirrors its content.
	assert.Len(t, f.model.Requests, 1)
	assert.Equal(t, "hi there!", result.Envelope.Choices[0].Message.Content)
	assert.Equal(t, "assistant", result.Envelope.Choices[0].Message.Role)
	assert.Equal(t, "chat.completion", result.Envelope.Object)
	assert.Equal(t, "stop", result.Envelope.Choices[0].FinishReason)
	assert.Equal(t, "default", result.Envelope.ServiceTier)
	assert.False(t, result.ToolInvoked)
	assert.False(t, result.Streamed)

	// NEW_USER_MSG precedes BOT_REPLY, both on the same correlation id.
	published := f.stream.Published()
	require.Len(t, published, 2)
	assert.Equal(t, core.EventNewUserMessage, published[0].Type)
	assert.Equal(t, core.EventBotReply, published[1].Type)
	assert.Equal(t, published[0].ID, published[1].ID)
	assert.Equal(t, "hi there!", published[1].Text())

	// One trace record for the request.
	assert.Len(t, f.traces.ByKind("completion"), 1)
}

func TestComplete_NoUserMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Complete(context.Background(), &Request{
		Messages: []IncomingMessage{{Role: "system", Content: "be nice"}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	// Rejected before any observable side effect.
	assert.Empty(t, f.stream.Published())
	assert.Empty(t, f.model.Requests)
}

func TestComplete_GathersNotesIntoPrompt(t *testing.T) {
	f := newFixture(t)
	f.model.AddResponse("hello", "answer")

	// A helper agent reacts to the published user message by contributing a
	// note against the same correlation id.
	notes, err := f.stream.Subscribe(context.Background())
	require.NoError(t, err)
	go func() {
		for ev := range notes {
			if ev.Type == core.EventNewUserMessage {
				_ = f.stream.Publish(context.Background(), core.NewAgentNoteEvent(ev.ID, "user sounds cheerful"))
				return
			}
		}
	}()

	_, err = f.orch.Complete(context.Background(), userRequest("hello"))
	require.NoError(t, err)

	require.Len(t, f.model.Requests, 1)
	messages := f.model.Requests[0].Messages
	last := messages[len(messages)-1]
	assert.Equal(t, "system", last.Role)
	assert.Contains(t, last.Content, "user sounds cheerful")
	assert.Contains(t, last.Content, "- ")
}

func TestComplete_NoNotesLeavesPromptUntouched(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Complete(context.Background(), userRequest("hello"))
	require.NoError(t, err)

	require.Len(t, f.model.Requests, 1)
	messages := f.model.Requests[0].Messages
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].Role)
}

func TestComplete_TemperatureDefaultAndOverride(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Complete(context.Background(), userRequest("hello"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTemperature, f.model.Requests[0].Temperature)

	temp := 0.2
	req := userRequest("hello")
	req.Temperature = &temp
	_, err = f.orch.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0.2, f.model.Requests[1].Temperature)
}

func TestComplete_AdvertisesOnlyRequestedTools(t *testing.T) {
	weather := tool.NewFuncTool("get_weather", "Get the weather", nil,
		func(_ context.Context, _ map[string]any) (tool.Result, error) {
			return tool.Result{Output: "sunny"}, nil
		},
	)
	f := newFixture(t, weather)

	req := userRequest("hello")
	req.Tools = []ToolSpec{{}}
	req.Tools[0].Function.Name = "get_weather"

	_, err := f.orch.Complete(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, f.model.Requests, 1)
	defs := f.model.Requests[0].Tools
	require.Len(t, defs, 1)
	assert.Equal(t, "get_weather", defs[0].Function.Name)
}

func TestComplete_NoToolsRequestedAdvertisesNone(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Complete(context.Background(), userRequest("hello"))
	require.NoError(t, err)
	assert.Empty(t, f.model.Requests[0].Tools)
}

func TestComplete_ToolCallRoundTrip(t *testing.T) {
	weather := tool.NewFuncTool("get_weather", "Get the weather", nil,
		func(_ context.Context, _ map[string]any) (tool.Result, error) {
			return tool.Result{Output: "sunny, 21C"}, nil
		},
	)
	f := newFixture(t, weather)
	f.model.QueueToolCall(&model.ToolCall{
		ID:        "call-1",
		Name:      "get_weather",
		Arguments: json.RawMessage(`{"city":"Berlin"}`),
	})
	f.model.AddResponse("hello", "It is sunny in Berlin.")

	result, err := f.orch.Complete(context.Background(), userRequest("hello"))
	require.NoError(t, err)

	// Exactly two generation calls; the second sees the tool result and is
	// offered no tool schemas.
	require.Len(t, f.model.Requests, 2)
	second := f.model.Requests[1]
	assert.Empty(t, second.Tools)

	var toolMsg *model.Message
	for i := range second.Messages {
		if second.Messages[i].Role == "tool" {
			toolMsg = &second.Messages[i]
		}
	}
	require.NotNil(t, toolMsg)
	assert.Equal(t, "sunny, 21C", toolMsg.Content)
	assert.Equal(t, "call-1", toolMsg.ToolCallID)

	assert.True(t, result.ToolInvoked)
	assert.False(t, result.EndSession)
	assert.Equal(t, "It is sunny in Berlin.", result.Envelope.Choices[0].Message.Content)
}

func TestComplete_ToolArgsUnparseableDefaultsToEmpty(t *testing.T) {
	var gotArgs map[string]any
	echo := tool.NewFuncTool("echo", "Echo", nil,
		func(_ context.Context, args map[string]any) (tool.Result, error) {
			gotArgs = args
			return tool.Result{Output: "ok"}, nil
		},
	)
	f := newFixture(t, echo)
	f.model.QueueToolCall(&model.ToolCall{ID: "call-1", Name: "echo", Arguments: json.RawMessage("{broken")})

	_, err := f.orch.Complete(context.Background(), userRequest("hello"))
	require.NoError(t, err)
	assert.NotNil(t, gotArgs)
	assert.Empty(t, gotArgs)
}

func TestComplete_UnknownToolFailsWithoutSecondCall(t *testing.T) {
	f := newFixture(t)
	f.model.QueueToolCall(&model.ToolCall{ID: "call-1", Name: "not_registered"})

	_, err := f.orch.Complete(context.Background(), userRequest("hello"))
	assert.ErrorIs(t, err, tool.ErrUnknownTool)
	assert.Len(t, f.model.Requests, 1)
}

func TestComplete_EndCallToolSignalsSessionEnd(t *testing.T) {
	f := newFixture(t)
	f.model.QueueToolCall(&model.ToolCall{ID: "call-1", Name: tool.EndCallName})
	f.model.AddResponse("goodbye", "Goodbye!")

	result, err := f.orch.Complete(context.Background(), userRequest("goodbye"))
	require.NoError(t, err)
	assert.True(t, result.EndSession)
	assert.True(t, result.ToolInvoked)
}

func TestComplete_StreamingSuppressedAfterToolCall(t *testing.T) {
	f := newFixture(t)
	f.model.QueueToolCall(&model.ToolCall{ID: "call-1", Name: tool.EndCallName})

	req := userRequest("goodbye")
	req.Stream = true
	result, err := f.orch.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Streamed)

	result, err = f.orch.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Streamed)
}

func TestComplete_UsageSummedAcrossToolRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.model.QueueToolCall(&model.ToolCall{ID: "call-1", Name: tool.EndCallName})
	f.model.AddResponse("bye", "Bye now")

	result, err := f.orch.Complete(context.Background(), userRequest("bye"))
	require.NoError(t, err)
	usage := result.Envelope.Usage
	assert.Equal(t, usage.PromptTokens+usage.CompletionTokens, usage.TotalTokens)
	assert.Greater(t, usage.TotalTokens, 1)
}
