package stage

import "time"

// Name identifies a pipeline state.
type Name string

// Pipeline states, in order.
const (
	Init                Name = "init"
	SourcesValidated    Name = "sources_validated"
	Unpacked            Name = "unpacked"
	EnvironmentReady    Name = "environment_ready"
	Configured          Name = "configured"
	BuildCompleted      Name = "build_completed"
	Aborted             Name = "aborted"
	PlatformUnsupported Name = "platform_unsupported"
)

// Terminal reports whether no further transition leaves n.
func (n Name) Terminal() bool {
	return n == BuildCompleted || n == Aborted || n == PlatformUnsupported
}

// Result captures the outcome of a single stage.
type Result struct {
	stage    Name
	err      *Error
	command  string
	duration time.Duration
}

// NewResult creates a Result for stage. A nil err means success.
func NewResult(stage Name, err *Error) Result {
	return Result{stage: stage, err: err}
}

// Succeeded creates a successful Result for stage.
func Succeeded(stage Name) Result {
	return Result{stage: stage}
}

// Failed creates a failed Result for stage.
func Failed(stage Name, err *Error) Result {
	return Result{stage: stage, err: err}
}

// Stage returns the stage this result belongs to.
func (r Result) Stage() Name {
	return r.stage
}

// Err returns the failure, or nil on success.
func (r Result) Err() *Error {
	return r.err
}

// Command returns the rendered command line the stage ran, if any.
func (r Result) Command() string {
	return r.command
}

// Duration returns how long the stage took.
func (r Result) Duration() time.Duration {
	return r.duration
}

// Success returns true if the stage completed without error.
func (r Result) Success() bool {
	return r.err == nil
}

// WithDuration returns a new Result with duration set.
func (r Result) WithDuration(d time.Duration) Result {
	r.duration = d
	return r
}

// WithCommand returns a new Result recording the command line.
func (r Result) WithCommand(command string) Result {
	r.command = command
	return r
}
