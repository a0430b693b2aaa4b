package executil

import (
	"context"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Dir  string
	Cmd  string
	Args []string
}

// RecordingExecutor captures commands for testing.
// Configure Outputs, Stderr and Errors maps to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps command names to their stdout.
	// Key is the command name (e.g., "yt-dlp").
	Outputs map[string][]byte

	// Stderr maps command names to their stderr.
	Stderr map[string][]byte

	// Errors maps command names to their error.
	Errors map[string]error

	// OnRun, if set, is called with every recorded command before returning.
	// Tests use it to create the files a real tool would produce.
	OnRun func(RecordedCommand)
}

// Run records the command and returns configured stdout/error.
func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	out, err := e.record("", cmd, args...)
	return out.Stdout, err
}

// Capture records the command with directory and returns configured output/error.
func (e *RecordingExecutor) Capture(ctx context.Context, dir, cmd string, args ...string) (Output, error) {
	return e.record(dir, cmd, args...)
}

func (e *RecordingExecutor) record(dir, cmd string, args ...string) (Output, error) {
	e.mu.Lock()
	rc := RecordedCommand{
		Dir:  dir,
		Cmd:  cmd,
		Args: args,
	}
	e.Commands = append(e.Commands, rc)

	var out Output
	var err error

	if e.Outputs != nil {
		out.Stdout = e.Outputs[cmd]
	}
	if e.Stderr != nil {
		out.Stderr = e.Stderr[cmd]
	}
	if e.Errors != nil {
		err = e.Errors[cmd]
	}
	hook := e.OnRun
	e.mu.Unlock()

	if hook != nil {
		hook(rc)
	}

	return out, err
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
