package pipeline

import (
	"errors"
	"time"

	"github.com/felixgeelhaar/qtforge/internal/domain/paths"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
)

// Exit codes.
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitUnsupported = -1
)

// Outcome is the result of one pipeline run.
type Outcome struct {
	RunID     string
	State     stage.Name     // Final state
	AbortedAt stage.Name     // Stage that failed, when State is Aborted
	Failed    *stage.Error   // The failure, if any
	Results   []stage.Result // One per attempted stage, in order
	Paths     paths.Resolved
	ExitCode  int
	Message   string
	Duration  time.Duration
}

// Success returns true if no stage failed.
func (o Outcome) Success() bool {
	return o.Failed == nil
}

// Result returns the result recorded for name.
func (o Outcome) Result(name stage.Name) (stage.Result, bool) {
	for _, r := range o.Results {
		if r.Stage() == name {
			return r, true
		}
	}
	return stage.Result{}, false
}

// ExitCodeOf maps an error to the process exit code. Hosts that cannot build
// at all get ExitUnsupported.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var se *stage.Error
	if !errors.As(err, &se) {
		return ExitFailure
	}
	switch se.Kind {
	case stage.KindPlatformUnsupported, stage.KindNotImplemented:
		return ExitUnsupported
	default:
		return ExitFailure
	}
}
