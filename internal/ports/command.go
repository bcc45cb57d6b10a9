// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"strings"
)

// Command is a structured external process invocation: an executable and
// its ordered arguments. Arguments are never joined into a shell line by
// qtforge itself; String only renders them for logs and comparisons.
type Command struct {
	Name string
	Args []string
	// Env is the complete child environment. Nil inherits the parent's.
	Env []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// NewCommand creates a Command from an executable and its arguments.
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: append([]string(nil), args...)}
}

// WithEnv returns a copy of c that runs with the given environment.
func (c Command) WithEnv(env []string) Command {
	c.Env = append([]string(nil), env...)
	return c
}

// WithDir returns a copy of c that runs in dir.
func (c Command) WithDir(dir string) Command {
	c.Dir = dir
	return c
}

// Argv returns the executable followed by its arguments.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Name)
	return append(argv, c.Args...)
}

// String renders the command line. Tokens containing whitespace or quotes
// are double-quoted, so identical commands always render identically.
func (c Command) String() string {
	argv := c.Argv()
	parts := make([]string, len(argv))
	for i, tok := range argv {
		parts[i] = quote(tok)
	}
	return strings.Join(parts, " ")
}

func quote(tok string) string {
	if tok == "" {
		return `""`
	}
	if !strings.ContainsAny(tok, " \t\"") {
		return tok
	}
	return `"` + strings.ReplaceAll(tok, `"`, `\"`) + `"`
}

// CommandResult represents the result of executing a command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandRunner executes external commands synchronously.
// A non-zero exit is reported through CommandResult.ExitCode, not as an error;
// the error return is reserved for commands that could not be started.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}
