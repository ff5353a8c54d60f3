// Package testutil provides shared in-memory fakes for package tests,
// primarily a loopback event stream that lets orchestrator and server tests
// run without Redis.
package testutil
