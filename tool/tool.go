// Package tool implements the function-calling subsystem: a name-keyed
// registry of callable tools with schema-validated arguments, consistent
// error handling and definitions the generation call can advertise.
package tool

import (
	"context"
	"fmt"

	"github.com/tlum/assistant-backend/internal/util"
)

// Tool is a callable capability the model may elect to invoke before
// producing final text.
//
// Implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define a proper JSON schema for parameters
//   - Be safe for concurrent use; the registry is shared process-wide
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case or
	// camelCase, matching what the model is told).
	Name() string

	// Description is provided to the model to explain when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with already-parsed arguments.
	Call(ctx context.Context, args map[string]any) (Result, error)
}

// Result is a tool's outcome. EndSession set means the caller should
// terminate the conversation after delivering Output; it replaces the magic
// sentinel string the transport layer would otherwise have to match on.
type Result struct {
	Output     string `json:"output"`
	EndSession bool   `json:"end_session,omitempty"`
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
