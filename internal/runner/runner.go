// Package runner executes external commands (pdftotext, pdftoppm,
// tesseract, git) behind an interface so they can be stubbed in tests.
package runner

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// Exec runs commands on the host. Dir, when set, is the working directory.
type Exec struct {
	Dir    string
	Logger *slog.Logger
}

// New returns an Exec runner logging to logger.
func New(logger *slog.Logger) *Exec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exec{Logger: logger}
}

// InDir returns a copy of the runner working in dir.
func (r *Exec) InDir(dir string) *Exec {
	cp := *r
	cp.Dir = dir
	return &cp
}

func (r *Exec) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		logger.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", Truncate(errb.String(), 8<<10), // cap at 8KB
		)
	} else {
		logger.Debug("exec ok",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
			"stderr_bytes", errb.Len(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

// Truncate caps s at max bytes.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// Call is one recorded invocation of a Stub.
type Call struct {
	Name string
	Args []string
}

// Stub is a scripted Runner for tests. Handler decides the outcome of each
// call; every call is recorded in Calls.
type Stub struct {
	Handler func(name string, args []string) (stdout, stderr []byte, err error)
	Calls   []Call
}

func (s *Stub) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.Calls = append(s.Calls, Call{Name: name, Args: append([]string(nil), args...)})
	if s.Handler == nil {
		return nil, nil, nil
	}
	return s.Handler(name, args)
}
