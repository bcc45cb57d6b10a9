// Package sdkenv derives the compiler and SDK environment a native Qt build
// needs, without touching the parent process environment.
package sdkenv

import (
	"strings"

	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// Var is one environment assignment. A Prepend var is placed in front of the
// inherited value using the platform list separator.
type Var struct {
	Name    string
	Value   string
	Prepend bool
}

// Environment is an ordered set of variables plus the statements that
// reproduce the SDK environment inside a child shell.
type Environment struct {
	profile    platform.Profile
	shell      string
	vars       []Var
	statements []ports.Command
}

// NewEnvironment creates an Environment (for testing and composition).
func NewEnvironment(profile platform.Profile, vars []Var, statements []ports.Command) Environment {
	return Environment{
		profile:    profile,
		shell:      profile.Shell(),
		vars:       append([]Var(nil), vars...),
		statements: append([]ports.Command(nil), statements...),
	}
}

// WithShell returns a copy of e whose statements run in shell.
func (e Environment) WithShell(shell string) Environment {
	e.shell = shell
	return e
}

// Shell returns the interpreter that runs the statements.
func (e Environment) Shell() string {
	return e.shell
}

// Profile returns the platform the environment was built for.
func (e Environment) Profile() platform.Profile {
	return e.profile
}

// Variables returns the assignments in order.
func (e Environment) Variables() []Var {
	return append([]Var(nil), e.vars...)
}

// Vars returns the assignments keyed by name. Prepend vars map to the prefix
// only.
func (e Environment) Vars() map[string]string {
	m := make(map[string]string, len(e.vars))
	for _, v := range e.vars {
		m[v.Name] = v.Value
	}
	return m
}

// Statements returns the initialization commands in order. Each is the
// script itself with its switches, not wrapped in a shell.
func (e Environment) Statements() []ports.Command {
	return append([]ports.Command(nil), e.statements...)
}

// InitCommand wraps the statements in the platform shell, e.g.
// cmd.exe /C "C:\sdk\Bin\SetEnv.cmd" /Release /x64 /win7.
func (e Environment) InitCommand() ports.Command {
	args := []string{"/C"}
	if !e.profile.IsWindows() {
		args = []string{"-c"}
	}
	for i, s := range e.statements {
		if i > 0 {
			args = append(args, "&&")
		}
		args = append(args, s.Argv()...)
	}
	return ports.NewCommand(e.shell, args...)
}

// Wrap chains cmd after the statements in a single shell invocation, so the
// environment they establish is still in effect for cmd. Without statements
// cmd is returned unchanged.
func (e Environment) Wrap(cmd ports.Command) ports.Command {
	if len(e.statements) == 0 {
		return cmd
	}

	var wrapped ports.Command
	if e.profile.IsWindows() {
		args := []string{"/C"}
		for _, s := range e.statements {
			args = append(args, "call")
			args = append(args, s.Argv()...)
			args = append(args, "&&")
		}
		wrapped = ports.NewCommand(e.shell, append(args, cmd.Argv()...)...)
	} else {
		lines := make([]string, 0, len(e.statements)+1)
		for _, s := range e.statements {
			lines = append(lines, s.String())
		}
		lines = append(lines, cmd.String())
		wrapped = ports.NewCommand(e.shell, "-c", strings.Join(lines, " && "))
	}
	wrapped.Dir = cmd.Dir
	return wrapped
}

// Script renders the assignments as shell statements, e.g.
// "set PATH=C:\sdk\Bin;%PATH%" on Windows or "export PATH=/sdk/bin:$PATH".
func (e Environment) Script() []string {
	lines := make([]string, 0, len(e.vars))
	for _, v := range e.vars {
		value := v.Value
		if e.profile.IsWindows() {
			if v.Prepend {
				value += e.profile.ListSeparator() + "%" + v.Name + "%"
			}
			lines = append(lines, "set "+v.Name+"="+value)
			continue
		}
		if v.Prepend {
			value += e.profile.ListSeparator() + "$" + v.Name
		}
		lines = append(lines, "export "+v.Name+"="+value)
	}
	return lines
}

// Apply returns base with the environment merged in. base is not modified.
// Names compare case-insensitively on Windows.
func (e Environment) Apply(base []string) []string {
	out := append([]string(nil), base...)
	for _, v := range e.vars {
		i := e.index(out, v.Name)
		value := v.Value
		if v.Prepend && i >= 0 {
			if _, cur, _ := strings.Cut(out[i], "="); cur != "" {
				value += e.profile.ListSeparator() + cur
			}
		}
		if i >= 0 {
			name, _, _ := strings.Cut(out[i], "=")
			out[i] = name + "=" + value
		} else {
			out = append(out, v.Name+"="+value)
		}
	}
	return out
}

func (e Environment) index(env []string, name string) int {
	for i, kv := range env {
		k, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if k == name || (e.profile.IsWindows() && strings.EqualFold(k, name)) {
			return i
		}
	}
	return -1
}
