// Package executil provides external command execution utilities.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Output holds the separated output streams of a finished command.
type Output struct {
	Stdout []byte
	Stderr []byte
}

// Executor runs external commands.
type Executor interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// Capture executes a command in dir and returns stdout and stderr separately.
	// Output is returned even when the command fails.
	Capture(ctx context.Context, dir, cmd string, args ...string) (Output, error)
}

// RealExecutor calls actual commands.
type RealExecutor struct{}

// Run executes a command and returns its combined output.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, cmd, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("exec %s: %w", cmd, err)
	}
	return out, nil
}

// Capture executes a command in dir and returns stdout and stderr separately.
func (e *RealExecutor) Capture(ctx context.Context, dir, cmd string, args ...string) (Output, error) {
	var stdout, stderr bytes.Buffer

	c := exec.CommandContext(ctx, cmd, args...)
	c.Dir = dir
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		return out, fmt.Errorf("exec %s: %w", cmd, err)
	}
	return out, nil
}
