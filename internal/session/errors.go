package session

import (
	"errors"
	"fmt"
	"strings"

	"foreman/internal/controller"
	"foreman/internal/logs"
)

// errorLogExcerptLines bounds how much of the job's logs the error message
// itself carries. The full logs stay reachable through the handle.
const errorLogExcerptLines = 20

// ExecutionError reports a CLI command that reached a terminal status other
// than SUCCESS. It exposes the command and a log handle so the caller can
// extract more of the logs before cleaning the file up.
type ExecutionError struct {
	// Status is the terminal status the job reached.
	Status controller.JobStatus

	// Command is the CLI command that was executed.
	Command string

	// Logs is the handle to the stored job logs. May be nil when log
	// retrieval itself failed.
	Logs *logs.Handle
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("cluster CLI command %q finished with status %s", e.Command, e.Status)
	if e.Logs == nil {
		return msg
	}
	lines, err := e.Logs.LogLines(errorLogExcerptLines)
	if err != nil || len(lines) == 0 {
		return msg
	}
	return msg + ":\n" + strings.Join(lines, "\n") + "\n(full logs: " + e.Logs.Path() + ")"
}

// AsExecutionError unwraps err into an ExecutionError, if it is one.
func AsExecutionError(err error) (*ExecutionError, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr, true
	}
	return nil, false
}
