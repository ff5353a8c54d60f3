// Package completion implements the top-level sequencing for one chat
// completion request: validate, publish the new-user-message event, gather
// correlated agent notes within a bounded window, drive the generation call
// (with an optional single tool round-trip), publish the final reply and
// assemble the externally visible response envelope, either as one JSON
// object or as an incrementally streamed sequence of chunks.
package completion
