// Package matchctx is the matching context: the one long-lived,
// mutable value a matching run touches. It owns both call graphs, the
// fixed-point store, one feature cache per flow graph plus one per call
// graph, a run identifier, a logger, and cooperative cancellation.
// Matching steps never hold state between invocations — they consult
// the context instead, which is what makes them reentrant.
package matchctx
