// Package controller implements the ephemeral job controller: it creates,
// replaces, monitors and deletes content-addressed batch jobs in one
// namespace of one cluster.
//
// The controller is single-threaded and synchronous. Completion tracking is
// a blocking poll loop (refresh cache, evaluate status, sleep) with an
// explicit deadline; there are no background goroutines. Concurrency across
// independent units of work is the caller's responsibility, with one
// controller instance per caller.
//
// Job identity is the only coordination mechanism: a resubmitted definition
// collides on its deterministic name, and the configured ConcurrencyPolicy
// decides whether the existing job is kept or replaced. Replacement races
// between two controller instances are possible and unguarded.
package controller
