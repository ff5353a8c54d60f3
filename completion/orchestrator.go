package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tlum/assistant-backend/bus"
	"github.com/tlum/assistant-backend/core"
	"github.com/tlum/assistant-backend/logging"
	"github.com/tlum/assistant-backend/model"
	"github.com/tlum/assistant-backend/tool"
	"github.com/tlum/assistant-backend/trace"
)

// DefaultTemperature is used when the request leaves temperature unset.
const DefaultTemperature = 1.0

// Orchestrator sequences one completion request end to end. All collaborators
// are injected once at startup; the orchestrator itself is stateless across
// requests and safe for concurrent use.
type Orchestrator struct {
	stream    bus.Stream
	collector *bus.Collector
	tools     *tool.Registry
	model     model.Model
	traces    trace.Store
	logger    logging.Logger

	gatherWindow time.Duration
	temperature  float64
}

// OrchestratorOptions configure an Orchestrator.
type OrchestratorOptions struct {
	// GatherWindow bounds the wait for correlated agent notes.
	GatherWindow time.Duration
	// DefaultTemperature applies when the request does not set one.
	DefaultTemperature float64
	// Traces receives one audit record per request; nil disables tracing.
	Traces trace.Store
	Logger logging.Logger
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(
	stream bus.Stream,
	collector *bus.Collector,
	tools *tool.Registry,
	m model.Model,
	optFns ...func(o *OrchestratorOptions),
) *Orchestrator {
	opts := OrchestratorOptions{
		GatherWindow:       bus.DefaultGatherWindow,
		DefaultTemperature: DefaultTemperature,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		stream:       stream,
		collector:    collector,
		tools:        tools,
		model:        m,
		traces:       opts.Traces,
		logger:       opts.Logger,
		gatherWindow: opts.GatherWindow,
		temperature:  opts.DefaultTemperature,
	}
}

// Result is the orchestrator's outcome for one request.
type Result struct {
	Envelope *Envelope
	// Streamed reports whether the caller should encode the envelope as SSE
	// chunks (requested streaming and no tool round-trip occurred).
	Streamed bool
	// ToolInvoked is set when a tool round-trip happened.
	ToolInvoked bool
	// EndSession is set when the invoked tool asked to terminate the call.
	EndSession bool
}

// Complete runs the full state sequence for one request. Validation failures
// surface as ErrValidation before any side effect; generation and transport
// failures wrap ErrUpstream; an unregistered tool name wraps
// tool.ErrUnknownTool.
func (o *Orchestrator) Complete(ctx context.Context, req *Request) (*Result, error) {
	userText, err := req.LastUserMessage()
	if err != nil {
		return nil, err
	}

	// Register the waiter before publishing so a note racing the publish is
	// buffered, not dropped; publish before any waiting so concurrent agents
	// get the maximal window.
	correlationID := core.NewCorrelationID()
	watch := o.collector.Watch(correlationID)
	if err := o.stream.Publish(ctx, core.NewUserMessageEvent(correlationID, userText)); err != nil {
		watch.Cancel()
		return nil, fmt.Errorf("%w: publish user message: %v", ErrUpstream, err)
	}
	o.logger.Debug("completion.published", "correlation_id", correlationID)

	notes := watch.Collect(ctx, o.gatherWindow)

	outbound := req.outboundMessages()
	if len(notes) > 0 {
		outbound = append(outbound, model.Message{Role: "system", Content: formatNotes(notes)})
	}

	temperature := o.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	start := time.Now()
	resp, err := o.model.Generate(ctx, model.Request{
		Messages:    outbound,
		Temperature: temperature,
		Tools:       o.advertisedTools(req),
	})
	if err != nil {
		logging.LogModelCall(o.logger, o.model.Info().Name, 0, time.Since(start), err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	logging.LogModelCall(o.logger, o.model.Info().Name, resp.Usage.TotalTokens, time.Since(start), nil)

	result := &Result{}
	usage := resp.Usage
	finalText := resp.Content
	var toolName string

	if resp.ToolCall != nil {
		toolName = resp.ToolCall.Name
		finalText, usage, err = o.runToolTurn(ctx, outbound, resp, temperature, &result.EndSession)
		if err != nil {
			return nil, err
		}
		usage = sumUsage(resp.Usage, usage)
		result.ToolInvoked = true
	}

	if err := o.stream.Publish(ctx, core.NewBotReplyEvent(correlationID, finalText)); err != nil {
		// The reply itself is already in hand; losing the feed event is
		// logged, not fatal.
		o.logger.Warn("completion.publish_reply_failed", "correlation_id", correlationID, "error", err.Error())
	}

	o.writeTrace(ctx, correlationID, req, notes, toolName, usage)

	result.Envelope = NewEnvelope(modelName(resp, o.model), finalText, usage)
	result.Streamed = req.Stream && !result.ToolInvoked
	return result, nil
}

// runToolTurn executes the single permitted tool call and regenerates with
// the extended message list. No tool schemas are offered on the second call.
func (o *Orchestrator) runToolTurn(
	ctx context.Context,
	outbound []model.Message,
	first *model.Response,
	temperature float64,
	endSession *bool,
) (string, model.TokenUsage, error) {
	call := first.ToolCall

	args := map[string]any{}
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			// Unparseable arguments degrade to an empty object; the warning
			// is the trail for masked caller bugs.
			o.logger.Warn("completion.tool_args_unparseable", "tool", call.Name, "error", err.Error())
			args = map[string]any{}
		}
	}

	toolResult, err := o.tools.Call(ctx, call.Name, args)
	if err != nil {
		return "", model.TokenUsage{}, err
	}
	*endSession = toolResult.EndSession

	outbound = append(outbound,
		model.Message{Role: "assistant", ToolCall: call},
		model.Message{Role: "tool", Content: toolResult.Output, ToolCallID: call.ID},
	)

	second, err := o.model.Generate(ctx, model.Request{
		Messages:    outbound,
		Temperature: temperature,
	})
	if err != nil {
		return "", model.TokenUsage{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return second.Content, second.Usage, nil
}

// advertisedTools filters the registry's definitions down to exactly the
// subset named by the request. Tools the caller did not ask for are never
// advertised; an empty request tool list advertises nothing.
func (o *Orchestrator) advertisedTools(req *Request) []model.ToolDefinition {
	requested := req.RequestedToolNames()
	if len(requested) == 0 {
		return nil
	}
	var defs []model.ToolDefinition
	for _, def := range o.tools.Describe() {
		if requested[def.Function.Name] {
			defs = append(defs, def)
		}
	}
	return defs
}

func (o *Orchestrator) writeTrace(ctx context.Context, correlationID string, req *Request, notes []string, toolName string, usage model.TokenUsage) {
	if o.traces == nil {
		return
	}
	rec := trace.NewRecord("completion", correlationID, map[string]any{
		"session_id":   req.SessionID,
		"notes":        len(notes),
		"tool":         toolName,
		"total_tokens": usage.TotalTokens,
		"streamed":     req.Stream,
	})
	if err := o.traces.Write(ctx, rec); err != nil {
		o.logger.Warn("completion.trace_write_failed", "error", err.Error())
	}
}

// formatNotes renders gathered agent notes as a single system message.
func formatNotes(notes []string) string {
	var b strings.Builder
	b.WriteString("Helpful background information from other agents:\n")
	for _, n := range notes {
		b.WriteString("- ")
		b.WriteString(n)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func sumUsage(a, b model.TokenUsage) model.TokenUsage {
	return model.TokenUsage{
		PromptTokens:     a.PromptTokens + b.PromptTokens,
		CompletionTokens: a.CompletionTokens + b.CompletionTokens,
		TotalTokens:      a.TotalTokens + b.TotalTokens,
	}
}

func modelName(resp *model.Response, m model.Model) string {
	if resp.Model != "" {
		return resp.Model
	}
	return m.Info().Name
}
