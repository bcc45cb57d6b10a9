// Package app wires the build components together for the qtforge CLI.
package app

import (
	"context"
	"io"
	"os"

	"github.com/felixgeelhaar/qtforge/internal/adapters/command"
	"github.com/felixgeelhaar/qtforge/internal/adapters/filesystem"
	"github.com/felixgeelhaar/qtforge/internal/adapters/logging"
	"github.com/felixgeelhaar/qtforge/internal/domain/compile"
	"github.com/felixgeelhaar/qtforge/internal/domain/config"
	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/domain/extract"
	"github.com/felixgeelhaar/qtforge/internal/domain/paths"
	"github.com/felixgeelhaar/qtforge/internal/domain/pipeline"
	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/sdkenv"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// Options are the per-run settings that come from the command line.
type Options struct {
	ConfigPath    string
	Extractor     string // Overrides the config file when set
	ConfigureMode configure.Mode
	Compile       bool
	RunID         string
}

// Forge is the qtforge application.
type Forge struct {
	profile  platform.Profile
	fs       ports.FileSystem
	runner   ports.CommandRunner
	logger   ports.Logger
	progress io.Writer
	environ  func() []string
	path     func() string
}

// New creates a Forge for the current host. Child process output and
// extraction progress are written to out.
func New(out io.Writer, logger ports.Logger) *Forge {
	return &Forge{
		profile:  platform.NewDetector().Detect(),
		fs:       filesystem.NewRealFileSystem(),
		runner:   command.NewRealRunner(command.WithStreams(out, out)),
		logger:   logging.OrNop(logger),
		progress: out,
		environ:  os.Environ,
		path:     func() string { return os.Getenv("PATH") },
	}
}

// WithProfile replaces the detected host profile.
func (f *Forge) WithProfile(profile platform.Profile) *Forge {
	f.profile = profile
	return f
}

// WithFileSystem replaces the file system.
func (f *Forge) WithFileSystem(fs ports.FileSystem) *Forge {
	f.fs = fs
	return f
}

// WithRunner replaces the command runner.
func (f *Forge) WithRunner(runner ports.CommandRunner) *Forge {
	f.runner = runner
	return f
}

// WithEnviron replaces the environment inherited by child processes.
func (f *Forge) WithEnviron(environ func() []string) *Forge {
	f.environ = environ
	return f
}

// WithSearchPath sets the search path used to locate the archiver.
func (f *Forge) WithSearchPath(path string) *Forge {
	f.path = func() string { return path }
	return f
}

// Profile returns the host profile.
func (f *Forge) Profile() platform.Profile {
	return f.profile
}

// LoadConfig loads the build config. An empty path yields the defaults.
func (f *Forge) LoadConfig(path string) (*config.BuildConfig, error) {
	return config.NewLoader(f.fs).Load(path)
}

// Flags returns the feature flag set selected by the config at path.
func (f *Forge) Flags(path string) (configure.FlagSet, error) {
	cfg, err := f.LoadConfig(path)
	if err != nil {
		return configure.FlagSet{}, err
	}
	return config.NewLoader(f.fs).FlagSet(cfg)
}

// Build runs the pipeline for req. The error is only set when the run could
// not start; stage failures are reported in the Outcome.
func (f *Forge) Build(ctx context.Context, req pipeline.Request, opts Options) (pipeline.Outcome, error) {
	cfg, err := f.LoadConfig(opts.ConfigPath)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	components, err := f.components(ctx, cfg, req, opts)
	if err != nil {
		return pipeline.Outcome{}, err
	}

	orchestrator := pipeline.New(f.profile, f.fs, components, pipeline.Options{
		ConfigureMode: opts.ConfigureMode,
		Compile:       opts.Compile,
		RunID:         opts.RunID,
	}, f.logger)
	return orchestrator.Run(ctx, req), nil
}

func (f *Forge) components(ctx context.Context, cfg *config.BuildConfig, req pipeline.Request, opts Options) (pipeline.Components, error) {
	flags, err := config.NewLoader(f.fs).FlagSet(cfg)
	if err != nil {
		return pipeline.Components{}, err
	}
	if flags.Version != "" && flags.Version != req.MajorMinor() {
		f.logger.Warn(ctx, "feature flag set was written for a different Qt version",
			ports.F("flag_set", flags.Name),
			ports.F("flag_set_version", flags.Version),
			ports.F("qt_version", req.Version()))
	}

	extractor, err := f.extractor(cfg, opts)
	if err != nil {
		return pipeline.Components{}, err
	}

	return pipeline.Components{
		Resolver:    paths.NewResolver(f.fs),
		Extractor:   extractor,
		Environment: sdkenv.NewBuilder(f.fs, cfg.SDKOptions(), f.logger),
		Configure:   configure.NewInvoker(f.profile, flags, f.runner, f.logger, configure.WithEnviron(f.environ)),
		Compiler:    compile.NewBuilder(f.profile, cfg.CompileOptions(), f.fs, f.runner, f.logger).WithEnviron(f.environ),
	}, nil
}

func (f *Forge) method(cfg *config.BuildConfig, opts Options) (extract.Method, error) {
	if opts.Extractor != "" {
		return extract.ParseMethod(opts.Extractor)
	}
	return cfg.ExtractMethod(), nil
}

func (f *Forge) extractor(cfg *config.BuildConfig, opts Options) (extract.Extractor, error) {
	method, err := f.method(cfg, opts)
	if err != nil {
		return nil, err
	}
	if method == extract.MethodBuiltin {
		return extract.NewBuiltin(f.progress, f.logger), nil
	}
	return f.external(cfg), nil
}

func (f *Forge) external(cfg *config.BuildConfig) *extract.External {
	return extract.NewExternal(f.profile, cfg.ExtractOptions(f.path()), f.fs, f.runner, f.logger)
}
