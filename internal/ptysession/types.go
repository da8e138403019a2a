// Package ptysession runs a child process attached to a pseudo-terminal and
// collects everything it writes until it exits.
package ptysession

import (
	"bytes"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// DefaultPollInterval bounds how long a single readiness wait on the master
// descriptor may block before the child's exit status is checked again.
const DefaultPollInterval = 10 * time.Millisecond

// DefaultSize is used when Options.Size has a zero dimension.
var DefaultSize = Size{Cols: 150, Rows: 130}

// Size is a terminal window size in character cells.
type Size struct {
	Cols uint16
	Rows uint16
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Cols, s.Rows)
}

// Options configures a session.
type Options struct {
	// Size is applied to the terminal before the child starts.
	Size Size
	// Env is appended to the inherited environment of the child.
	Env []string
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Size.Cols == 0 || o.Size.Rows == 0 {
		o.Size = DefaultSize
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// LaunchError indicates the executable could not be started.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// SessionError indicates the pseudo-terminal could not be set up or read.
// Op names the failed step, e.g. "open", "setsize", "poll" or "read".
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("pty %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// Session is a child process attached to the slave side of a pseudo-terminal.
// The master descriptor is owned by the session and read only by Collect.
type Session struct {
	opts     Options
	cmd      *exec.Cmd
	output   bytes.Buffer
	exitCode int
	closed   bool
	sys      sysState
}

// Size returns the terminal size the session was started with.
func (s *Session) Size() Size {
	return s.opts.Size
}

// Pid returns the process id of the child.
func (s *Session) Pid() int {
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// ExitCode returns the child's exit status once Collect has returned, or -1
// if it was terminated by a signal or could not be determined.
func (s *Session) ExitCode() int {
	return s.exitCode
}

// Run starts path with args on a terminal of the given size and returns
// everything the child wrote, once it has exited.
func Run(path string, args []string, size Size) ([]byte, error) {
	return RunWithOptions(path, args, Options{Size: size})
}

// RunWithOptions is Run with full control over the session options.
func RunWithOptions(path string, args []string, opts Options) ([]byte, error) {
	s, err := Start(path, args, opts)
	if err != nil {
		return nil, err
	}
	return s.Collect()
}

// TrimSeparators removes leading and trailing line separators. Content
// between the first and last non-separator bytes is returned as-is.
func TrimSeparators(b []byte) []byte {
	return bytes.Trim(b, "\r\n")
}
