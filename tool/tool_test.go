package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tlum/assistant-backend/internal/util"
)

func TestFuncTool_Success(t *testing.T) {
	echo := NewFuncTool(
		"echo",
		"Echo the given text back",
		util.ObjectSchema(map[string]any{"text": util.StringProperty("Text to echo")}, []string{"text"}),
		func(_ context.Context, args map[string]any) (Result, error) {
			return Result{Output: args["text"].(string)}, nil
		},
	)

	res, err := echo.Call(context.Background(), map[string]any{"text": "hi"})
	assert.NoError(t, err)
	assert.Equal(t, "hi", res.Output)
	assert.False(t, res.EndSession)
}

func TestFuncTool_ValidationError(t *testing.T) {
	echo := NewFuncTool(
		"echo",
		"Echo the given text back",
		util.ObjectSchema(map[string]any{"text": util.StringProperty("")}, []string{"text"}),
		func(_ context.Context, args map[string]any) (Result, error) {
			return Result{Output: args["text"].(string)}, nil
		},
	)

	_, err := echo.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFuncTool_ExecutionError(t *testing.T) {
	boom := NewFuncTool("boom", "Always fails", nil,
		func(_ context.Context, _ map[string]any) (Result, error) {
			return Result{}, errors.New("boom")
		},
	)

	_, err := boom.Call(context.Background(), map[string]any{})
	toolErr, ok := err.(*ToolError)
	assert.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Contains(t, toolErr.Error(), "boom")
}

func TestRegistry_Describe(t *testing.T) {
	weather := NewFuncTool("get_weather", "Get the weather", nil,
		func(_ context.Context, _ map[string]any) (Result, error) {
			return Result{Output: "sunny"}, nil
		},
	)
	r := NewRegistry([]Tool{weather})

	defs := r.Describe()
	assert.Len(t, defs, 2) // endCall is always present
	assert.Equal(t, EndCallName, defs[0].Function.Name)
	assert.Equal(t, "get_weather", defs[1].Function.Name)
	assert.Equal(t, "function", defs[1].Type)
	assert.NotNil(t, defs[1].Function.Parameters)
}

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry(nil)

	res, err := r.Call(context.Background(), EndCallName, nil)
	assert.NoError(t, err)
	assert.True(t, res.EndSession)
	assert.NotEmpty(t, res.Output)
}

func TestRegistry_Call_UnknownTool(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Call(context.Background(), "does_not_exist", nil)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Contains(t, err.Error(), "does_not_exist")
}
