// Package stage defines the failure taxonomy and per-stage results shared by
// every build component.
package stage

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes a stage failure.
type Kind string

// Failure kinds.
const (
	KindPathNotFound            Kind = "PATH_NOT_FOUND"
	KindNotAFile                Kind = "NOT_A_FILE"
	KindMalformedName           Kind = "MALFORMED_NAME"
	KindPlatformUnsupported     Kind = "PLATFORM_UNSUPPORTED"
	KindToolNotFound            Kind = "TOOL_NOT_FOUND"
	KindSdkNotFound             Kind = "SDK_NOT_FOUND"
	KindUnsupportedArchitecture Kind = "UNSUPPORTED_ARCHITECTURE"
	KindExtractionFailed        Kind = "EXTRACTION_FAILED"
	KindConfigureFailed         Kind = "CONFIGURE_FAILED"
	KindNotImplemented          Kind = "NOT_IMPLEMENTED"
	KindBuildFailed             Kind = "BUILD_FAILED"
	KindInvalidVersion          Kind = "INVALID_VERSION"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrPathNotFound            = &Error{Kind: KindPathNotFound}
	ErrNotAFile                = &Error{Kind: KindNotAFile}
	ErrMalformedName           = &Error{Kind: KindMalformedName}
	ErrPlatformUnsupported     = &Error{Kind: KindPlatformUnsupported}
	ErrToolNotFound            = &Error{Kind: KindToolNotFound}
	ErrSdkNotFound             = &Error{Kind: KindSdkNotFound}
	ErrUnsupportedArchitecture = &Error{Kind: KindUnsupportedArchitecture}
	ErrExtractionFailed        = &Error{Kind: KindExtractionFailed}
	ErrConfigureFailed         = &Error{Kind: KindConfigureFailed}
	ErrNotImplemented          = &Error{Kind: KindNotImplemented}
	ErrBuildFailed             = &Error{Kind: KindBuildFailed}
	ErrInvalidVersion          = &Error{Kind: KindInvalidVersion}
)

// Error is a stage failure with enough detail to act on it.
type Error struct {
	Kind       Kind
	Message    string
	Path       string   // Offending path, if any
	Command    string   // Rendered command line, if a process was involved
	ExitCode   int      // Exit status of Command
	Candidates []string // Tool names that were searched for
	Suggestion string
	Underlying error
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Error returns the message with its location, if any.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, " (at %s)", e.Path)
	}
	if e.Command != "" {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() by comparing kinds.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Report returns a multi-line description with every detail that is set.
func (e *Error) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Kind, e.Message)

	if e.Path != "" {
		fmt.Fprintf(&b, "\n  Path: %s", e.Path)
	}
	if e.Command != "" {
		fmt.Fprintf(&b, "\n  Command: %s", e.Command)
		fmt.Fprintf(&b, "\n  Exit code: %d", e.ExitCode)
	}
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, "\n  Searched for: %s", strings.Join(e.Candidates, ", "))
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}

	return b.String()
}

// WithPath returns a copy of e with the offending path set.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// WithCommand returns a copy of e with the failed command and its exit code.
func (e *Error) WithCommand(command string, exitCode int) *Error {
	c := *e
	c.Command = command
	c.ExitCode = exitCode
	return &c
}

// WithCandidates returns a copy of e listing the searched tool names.
func (e *Error) WithCandidates(candidates []string) *Error {
	c := *e
	c.Candidates = append([]string(nil), candidates...)
	return &c
}

// WithSuggestion returns a copy of e with a suggestion set.
func (e *Error) WithSuggestion(suggestion string) *Error {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// WithUnderlying returns a copy of e wrapping err.
func (e *Error) WithUnderlying(err error) *Error {
	c := *e
	c.Underlying = err
	return &c
}

// From returns err as an *Error. Errors of any other type are wrapped in a
// new Error of the fallback kind.
func From(err error, fallback Kind, message string) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return &Error{Kind: fallback, Message: message, Underlying: err}
}
