// Package agent contains the polymorphic handler units that may contribute a
// response to an event, and the Registry that fans an event out to every
// capable agent concurrently.
//
// Design principles:
//   - Capability dispatch is explicit: CanHandle is a fast, side-effect-free
//     predicate evaluated synchronously before Handle is scheduled
//   - Agents are stateless with respect to requests; instances are built once
//     at startup and registered in a fixed order
//   - Handler failures are isolated per agent: the registry returns partial
//     successes plus a side list of failures so one slow or failing agent
//     never sinks its siblings
package agent
