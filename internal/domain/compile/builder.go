// Package compile runs the native build and install after configure and
// makes the installed tree relocatable.
package compile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/sdkenv"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// Options configures the build tool.
type Options struct {
	// MakeTool overrides the platform default (nmake on Windows, make elsewhere).
	MakeTool string
	// Args are passed to every make invocation, e.g. "-j8" or "/NOLOGO".
	Args []string
}

// Builder composes and runs the build and install commands.
type Builder struct {
	profile platform.Profile
	opts    Options
	fs      ports.FileSystem
	runner  ports.CommandRunner
	logger  ports.Logger
	environ func() []string
}

// NewBuilder creates a Builder.
func NewBuilder(profile platform.Profile, opts Options, fs ports.FileSystem, runner ports.CommandRunner, logger ports.Logger) *Builder {
	return &Builder{
		profile: profile,
		opts:    opts,
		fs:      fs,
		runner:  runner,
		logger:  logger,
		environ: os.Environ,
	}
}

// WithEnviron sets the function providing the inherited environment.
func (b *Builder) WithEnviron(environ func() []string) *Builder {
	b.environ = environ
	return b
}

// MakeTool returns the build tool executable.
func (b *Builder) MakeTool() string {
	if b.opts.MakeTool != "" {
		return b.opts.MakeTool
	}
	if b.profile.IsWindows() {
		return "nmake"
	}
	return "make"
}

// Compose returns the build command followed by the install command, both
// run in sourceDir under env.
func (b *Builder) Compose(sourceDir string, env sdkenv.Environment) []ports.Command {
	build := ports.NewCommand(b.MakeTool(), b.opts.Args...)
	install := ports.NewCommand(b.MakeTool(), append(append([]string(nil), b.opts.Args...), "install")...)
	return []ports.Command{
		env.Wrap(build).WithDir(sourceDir),
		env.Wrap(install).WithDir(sourceDir),
	}
}

// Run builds and installs. In ModeLogOnly the commands are only logged.
// After a successful install installPath must exist; qt.conf is then
// written to its bin directory.
func (b *Builder) Run(ctx context.Context, sourceDir, installPath string, env sdkenv.Environment, mode configure.Mode) stage.Result {
	cmds := b.Compose(sourceDir, env)
	for _, cmd := range cmds {
		b.logger.Info(ctx, "build command", ports.Cmd(cmd), ports.F("mode", mode.String()))
	}
	if mode != configure.ModeExecute {
		return stage.Succeeded(stage.BuildCompleted).WithCommand(cmds[len(cmds)-1].String())
	}

	childEnv := env.Apply(b.environ())
	for _, cmd := range cmds {
		line := cmd.String()
		result, err := b.runner.Run(ctx, cmd.WithEnv(childEnv))
		if err != nil {
			return stage.Failed(stage.BuildCompleted, stage.New(stage.KindBuildFailed, "%s could not be started", b.MakeTool()).
				WithCommand(line, result.ExitCode).
				WithUnderlying(err)).WithCommand(line)
		}
		if !result.Success() {
			return stage.Failed(stage.BuildCompleted, stage.New(stage.KindBuildFailed, "%s exited with an error", b.MakeTool()).
				WithCommand(line, result.ExitCode)).WithCommand(line)
		}
	}

	if !b.fs.IsDir(installPath) {
		return stage.Failed(stage.BuildCompleted, stage.New(stage.KindBuildFailed, "install did not create the install path").
			WithPath(installPath))
	}
	if err := b.writeQtConf(installPath); err != nil {
		return stage.Failed(stage.BuildCompleted, stage.New(stage.KindBuildFailed, "failed to write qt.conf").
			WithPath(installPath).
			WithUnderlying(err))
	}

	return stage.Succeeded(stage.BuildCompleted).WithCommand(cmds[len(cmds)-1].String())
}

// QtConf renders a qt.conf that resolves the prefix relative to bin, so the
// installed tree keeps working after it is moved.
func QtConf() ([]byte, error) {
	cfg := ini.Empty()
	sec, err := cfg.NewSection("Paths")
	if err != nil {
		return nil, err
	}
	if _, err := sec.NewKey("Prefix", ".."); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *Builder) writeQtConf(installPath string) error {
	data, err := QtConf()
	if err != nil {
		return err
	}
	bin := filepath.Join(installPath, "bin")
	if err := b.fs.MkdirAll(bin, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", bin, err)
	}
	return b.fs.WriteFile(filepath.Join(bin, "qt.conf"), data, 0o644)
}
