// Package core provides the foundational domain types shared by every other
// package in the assistant backend:
//
//   - Events (immutable records exchanged over the shared stream and handed
//     to in-process agents)
//   - Correlation identifiers (the join key between an in-flight completion
//     request and asynchronously published agent contributions)
//   - Agent responses (the unit of output produced by an agent handler)
//
// The package intentionally has no behavior beyond construction helpers and
// accessors; transport, orchestration and model concerns live in their own
// packages to avoid cyclic dependencies.
package core
