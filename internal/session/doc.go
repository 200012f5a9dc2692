// Package session turns arbitrary cluster-management CLI commands into
// controller-managed batch jobs with typed failure reporting.
//
// A Session is scoped to one target account, region and set of credentials.
// Each command becomes a job whose identity covers only the nature of the
// work: the command itself, the target account and region, the dry-run flag,
// the service account and the CLI image. The organization identifier and the
// short-lived access token affect execution context and authorization, not
// what the job does, so they are deliberately excluded: two submissions of
// the same command against the same account and region collide on the same
// job name even when issued under different credentials.
//
// The access token reaches the job through the companion secret as an
// environment variable consumed by a login preamble; it never appears in the
// job spec or the mounted command script.
package session
