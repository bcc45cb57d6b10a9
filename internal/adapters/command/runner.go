// Package command provides command execution adapters.
package command

import (
	"context"
	"errors"
	"io"
	"os/exec"

	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// DefaultCaptureLimit is the number of trailing output bytes kept per stream.
const DefaultCaptureLimit = 64 << 10

// RealRunner executes actual external commands.
type RealRunner struct {
	stdout       io.Writer
	stderr       io.Writer
	captureLimit int
}

// RunnerOption configures a RealRunner.
type RunnerOption func(*RealRunner)

// WithStreams mirrors the child's output to the given writers while its tail
// is captured into the CommandResult. Configure and build steps run for a
// long time, so the operator sees progress as it happens.
func WithStreams(stdout, stderr io.Writer) RunnerOption {
	return func(r *RealRunner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithCaptureLimit sets how many trailing bytes of each stream are kept in
// the CommandResult. Non-positive values keep the default.
func WithCaptureLimit(n int) RunnerOption {
	return func(r *RealRunner) {
		if n > 0 {
			r.captureLimit = n
		}
	}
}

// NewRealRunner creates a new RealRunner.
func NewRealRunner(opts ...RunnerOption) *RealRunner {
	r := &RealRunner{captureLimit: DefaultCaptureLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a command, blocking until it exits, and returns the result.
func (r *RealRunner) Run(ctx context.Context, c ports.Command) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if c.Env != nil {
		cmd.Env = c.Env
	}

	stdout := newTailBuffer(r.captureLimit)
	stderr := newTailBuffer(r.captureLimit)
	cmd.Stdout = tee(stdout, r.stdout)
	cmd.Stderr = tee(stderr, r.stderr)

	err := cmd.Run()

	result := ports.CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = -1
		return result, err
	}

	return result, nil
}

func tee(capture *tailBuffer, stream io.Writer) io.Writer {
	if stream == nil {
		return capture
	}
	return io.MultiWriter(capture, stream)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= t.limit {
		t.buf = append(t.buf[:0], p[n-t.limit:]...)
		return n, nil
	}
	if over := len(t.buf) + n - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	t.buf = append(t.buf, p...)
	return n, nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}

// Ensure RealRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*RealRunner)(nil)
