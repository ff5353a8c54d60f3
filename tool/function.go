package tool

import (
	"context"

	"github.com/tlum/assistant-backend/internal/util"
)

// FuncTool is a generic adapter that exposes a plain Go function as a Tool.
// It validates supplied arguments against the declared schema before
// execution and normalizes failures into *ToolError with consistent codes:
//
//	VALIDATION_ERROR -> schema / argument mismatch
//	EXECUTION_ERROR  -> underlying function returned an error (non-ToolError)
//
// A FuncTool has no mutable state after construction and is safe for
// concurrent use by multiple goroutines.
type FuncTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (Result, error)
}

// NewFuncTool constructs a FuncTool from an explicit schema and function.
// Pass util.ObjectSchema(nil, nil) for tools that take no arguments.
func NewFuncTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (Result, error),
) *FuncTool {
	if parameters == nil {
		parameters = util.ObjectSchema(nil, nil)
	}
	return &FuncTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// Name returns the unique tool name used in function call declarations and routing.
func (t *FuncTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FuncTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FuncTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the declared schema then invokes the underlying
// function. Validation or execution failures are wrapped (or passed through)
// as *ToolError for uniform downstream handling.
func (t *FuncTool) Call(ctx context.Context, args map[string]any) (Result, error) {
	if err := util.ValidateParameters(args, t.parameters); err != nil {
		return Result{}, &ToolError{
			Tool:    t.name,
			Message: "parameter validation failed: " + err.Error(),
			Code:    "VALIDATION_ERROR",
		}
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return Result{}, toolErr
		}
		return Result{}, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}
	return result, nil
}
