package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/tlum/assistant-backend/logging"
	"github.com/tlum/assistant-backend/model"
)

// ErrUnknownTool is returned (wrapped) when a call names a tool that was
// never registered. Callers branch on it with errors.Is.
var ErrUnknownTool = fmt.Errorf("unknown tool")

// Registry holds the process-wide set of callable tools. Registration happens
// once at startup; after that the registry is read-only and safe for
// concurrent use.
type Registry struct {
	order  []string
	tools  map[string]Tool
	logger logging.Logger
}

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	Logger logging.Logger
}

// NewRegistry builds a registry containing the given tools plus the built-in
// endCall tool. Registration order is preserved for Describe.
func NewRegistry(tools []Tool, optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Registry{tools: make(map[string]Tool), logger: opts.Logger}
	r.register(NewEndCallTool())
	for _, t := range tools {
		r.register(t)
	}
	return r
}

func (r *Registry) register(t Tool) {
	if _, exists := r.tools[t.Name()]; exists {
		return
	}
	r.order = append(r.order, t.Name())
	r.tools[t.Name()] = t
}

// Describe returns a definition for every registered tool in registration
// order, ready to advertise to the generation call.
func (r *Registry) Describe() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Lookup returns the tool registered under name, if any.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Call resolves name and executes the tool synchronously. An unregistered
// name yields an error wrapping ErrUnknownTool. No timeout is imposed here;
// callers may wrap one via ctx.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (Result, error) {
	t, ok := r.tools[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	result, err := t.Call(ctx, args)
	logging.LogToolCall(r.logger, name, time.Since(start), err)
	return result, err
}
