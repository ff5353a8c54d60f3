package tool

import (
	"context"

	"github.com/tlum/assistant-backend/internal/util"
)

// EndCallName is the name the endCall tool is advertised under.
const EndCallName = "endCall"

// NewEndCallTool returns the built-in call-termination tool. Its result sets
// EndSession so the transport layer gets an explicit signal rather than
// matching on a sentinel string.
func NewEndCallTool() *FuncTool {
	return NewFuncTool(
		EndCallName,
		"Use this function to end the call. Only call it when explicitly instructed.",
		util.ObjectSchema(nil, nil),
		func(_ context.Context, _ map[string]any) (Result, error) {
			return Result{Output: "The call has ended.", EndSession: true}, nil
		},
	)
}
