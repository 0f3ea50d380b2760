// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package command runs external tools (tar, pandoc, docker, podman) behind
// an interface so stages can be exercised with fakes.
package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Cmd describes one external process invocation.
type Cmd struct {
	Name   string
	Args   []string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
}

// String renders the command line for messages.
func (c Cmd) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner abstracts command execution.
type Runner interface {
	// LookPath reports where an executable lives on PATH.
	LookPath(file string) (string, error)

	// Run executes the command and waits for it. A non-zero exit is
	// returned as *ExitError carrying the captured stderr.
	Run(ctx context.Context, c Cmd) error
}

// ExitError reports an external tool that failed to run or exited non-zero.
type ExitError struct {
	Cmd    string
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Cmd, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// OS is the production runner backed by os/exec.
type OS struct{}

func (OS) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OS) Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &ExitError{
			Cmd:    c.Name,
			Stderr: stderrTail(stderr.String()),
			Err:    err,
		}
	}
	return nil
}

// stderrTailLines is how many trailing stderr lines an ExitError keeps.
// Tools like tar end with a generic summary after the real cause.
const stderrTailLines = 3

// stderrTail keeps the last few non-blank lines of a tool's stderr,
// joined with "; ".
func stderrTail(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > stderrTailLines {
		lines = lines[len(lines)-stderrTailLines:]
	}
	return strings.Join(lines, "; ")
}
