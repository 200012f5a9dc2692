// Package job defines the job definition contract: a pure description of one
// unit of batch work, independent of whether it has been submitted.
//
// A Definition supplies a stable name prefix, a structured identity value and
// a rendered batch/v1 JobSpec. The job name is derived deterministically as
// {prefix}-{identity digest}, which is how the controller deduplicates work:
// two definitions with equal identity always collide on the same name.
//
// The identity digest is a truncated SHA-256 over the canonical JSON form of
// the identity value (map keys sorted recursively), so it is stable across
// processes and insensitive to map iteration order. Fields that only affect
// execution context (credentials, org scoping) must be kept out of the
// identity value.
//
// Every built job carries a generation annotation, a developer-maintained
// version string for the job type's spec-rendering logic. It is diagnostic
// only: nothing replaces a running job because its generation is stale.
package job
