package completion

import "errors"

// Error taxonomy for a completion request. The transport layer maps these to
// status codes with errors.Is; everything else surfaces as a server error.
var (
	// ErrValidation marks malformed requests (e.g. no user message). Raised
	// before any observable side effect.
	ErrValidation = errors.New("invalid completion request")

	// ErrUpstream marks generation-call or transport failures. Not retried
	// here; publishes that already happened are harmless to repeat.
	ErrUpstream = errors.New("upstream failure")
)
