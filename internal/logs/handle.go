// Package logs provides a bounded-access wrapper over a retrieved log
// artifact stored as a local file.
package logs

import (
	"bufio"
	"fmt"
	"os"
)

// Handle wraps one stored log file. The file is written by the controller's
// log retrieval; cleaning it up once the logs are no longer needed is the
// caller's responsibility.
type Handle struct {
	path string
}

// NewHandle returns a handle rooted at path. The file does not have to exist
// yet; Exists reports whether it does.
func NewHandle(path string) *Handle {
	return &Handle{path: path}
}

// Path returns the location of the backing file.
func (h *Handle) Path() string {
	return h.path
}

// LogLines returns up to maxLines lines from the start of the file, without
// trailing line terminators. maxLines <= 0 yields an empty slice; a shorter
// file yields fewer lines, never an error.
func (h *Handle) LogLines(maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}

	f, err := os.Open(h.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", h.path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) == maxLines {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file %s: %w", h.path, err)
	}

	return lines, nil
}

// WriteToSink passes the entire file content to sink in one call.
func (h *Handle) WriteToSink(sink func(string)) error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return fmt.Errorf("failed to read log file %s: %w", h.path, err)
	}
	sink(string(data))
	return nil
}

// Exists reports whether the backing file is present.
func (h *Handle) Exists() bool {
	_, err := os.Stat(h.path)
	return err == nil
}

// Cleanup removes the backing file. Removing a file that is already gone is
// not an error.
func (h *Handle) Cleanup() error {
	err := os.Remove(h.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove log file %s: %w", h.path, err)
	}
	return nil
}
