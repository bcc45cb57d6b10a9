package configure

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/sdkenv"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// Mode selects whether composed commands are executed.
type Mode int

const (
	// ModeLogOnly logs the command without running it.
	ModeLogOnly Mode = iota
	// ModeExecute logs and runs the command.
	ModeExecute
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeExecute {
		return "execute"
	}
	return "log-only"
}

// ParseMode parses "log-only" or "execute".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "log-only", "log", "dry-run":
		return ModeLogOnly, nil
	case "execute", "exec", "run":
		return ModeExecute, nil
	default:
		return ModeLogOnly, fmt.Errorf("unknown mode %q (expected log-only or execute)", s)
	}
}

// Command is a composed configure invocation.
type Command struct {
	configure ports.Command
	exec      ports.Command
	env       sdkenv.Environment
}

// Configure returns the bare configure call: configure<ext> -prefix <install> <flags>.
func (c Command) Configure() ports.Command {
	return c.configure
}

// Exec returns the command that actually runs, including any environment
// initialization chained in front of configure.
func (c Command) Exec() ports.Command {
	return c.exec
}

// Environment returns the environment the command runs with.
func (c Command) Environment() sdkenv.Environment {
	return c.env
}

// String renders the executed command line. Identical inputs always render
// identically.
func (c Command) String() string {
	return c.exec.String()
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithEnviron sets the function providing the inherited environment.
func WithEnviron(environ func() []string) Option {
	return func(i *Invoker) {
		i.environ = environ
	}
}

// Invoker composes and runs configure.
type Invoker struct {
	profile platform.Profile
	flags   FlagSet
	runner  ports.CommandRunner
	logger  ports.Logger
	environ func() []string
}

// NewInvoker creates an Invoker using flags.
func NewInvoker(profile platform.Profile, flags FlagSet, runner ports.CommandRunner, logger ports.Logger, opts ...Option) *Invoker {
	i := &Invoker{
		profile: profile,
		flags:   flags,
		runner:  runner,
		logger:  logger,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// FlagSet returns the flag set in use.
func (i *Invoker) FlagSet() FlagSet {
	return i.flags
}

// Script returns the configure script name for the platform.
func (i *Invoker) Script() string {
	if i.profile.IsWindows() {
		return "configure" + i.profile.ScriptExt()
	}
	return "./configure"
}

// Compose builds the configure command run in sourceDir. The prefix appears
// exactly once, before the flag set.
func (i *Invoker) Compose(installPath, sourceDir string, env sdkenv.Environment) Command {
	args := make([]string, 0, len(i.flags.Flags)+2)
	args = append(args, "-prefix", installPath)
	args = append(args, i.flags.Flags...)
	configure := ports.NewCommand(i.Script(), args...)

	return Command{
		configure: configure,
		exec:      env.Wrap(configure).WithDir(sourceDir),
		env:       env,
	}
}

// Run logs cmd and, in ModeExecute, runs it with the environment applied to
// a copy of the inherited one.
func (i *Invoker) Run(ctx context.Context, cmd Command, mode Mode) stage.Result {
	line := cmd.String()
	i.logger.Info(ctx, "configure command", ports.Cmd(cmd.exec), ports.F("mode", mode.String()))

	if mode != ModeExecute {
		return stage.Succeeded(stage.Configured).WithCommand(line)
	}

	run := cmd.exec.WithEnv(cmd.env.Apply(i.environ()))
	result, err := i.runner.Run(ctx, run)
	if err != nil {
		return stage.Failed(stage.Configured, stage.New(stage.KindConfigureFailed, "configure could not be started").
			WithCommand(line, result.ExitCode).
			WithUnderlying(err)).WithCommand(line)
	}
	if !result.Success() {
		return stage.Failed(stage.Configured, stage.New(stage.KindConfigureFailed, "configure exited with an error").
			WithCommand(line, result.ExitCode).
			WithSuggestion("see the configure output above; config.log in the source tree has details")).WithCommand(line)
	}

	return stage.Succeeded(stage.Configured).WithCommand(line)
}
