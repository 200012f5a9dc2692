// Package logging provides structured logging for foreman, built on Go's
// standard slog package.
//
// All log entries carry a level, a subsystem identifier, the formatted
// message and an optional error. Output is a single slog text handler; the
// controller-runtime logger is wired to the same handler so Kubernetes
// client machinery logs through the same stream.
//
// Usage:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Controller", "created job %s", name)
//	logging.Error("Session", err, "command failed")
//
// Subsystems in use: Config, Controller, Kube, Session, CLI.
//
// The package is safe for concurrent use from multiple goroutines.
package logging
