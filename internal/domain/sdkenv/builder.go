package sdkenv

import (
	"context"

	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/domain/target"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// Windows SDK 7.1 defaults.
const (
	DefaultSDKRoot      = `C:\Program Files\Microsoft SDKs\Windows\v7.1`
	DefaultSetEnvScript = `Bin\SetEnv.cmd`
	DefaultCompilerSpec = "win32-msvc2010"
	DefaultTargetOS     = "/win7"
)

// Options locates the SDK and selects the compiler.
type Options struct {
	SDKRoot      string
	SetEnvScript string // Relative to SDKRoot
	CompilerSpec string // qmake spec, exported as QMAKESPEC
	Shell        string // Defaults to the platform shell
	TargetOS     string // SetEnv switch selecting the minimum OS
}

// DefaultOptions returns the Windows SDK 7.1 options.
func DefaultOptions() Options {
	return Options{
		SDKRoot:      DefaultSDKRoot,
		SetEnvScript: DefaultSetEnvScript,
		CompilerSpec: DefaultCompilerSpec,
		TargetOS:     DefaultTargetOS,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SDKRoot == "" {
		o.SDKRoot = d.SDKRoot
	}
	if o.SetEnvScript == "" {
		o.SetEnvScript = d.SetEnvScript
	}
	if o.CompilerSpec == "" {
		o.CompilerSpec = d.CompilerSpec
	}
	if o.TargetOS == "" {
		o.TargetOS = d.TargetOS
	}
	return o
}

// Builder derives an Environment. It only stats paths.
type Builder struct {
	fs     ports.FileSystem
	opts   Options
	logger ports.Logger
}

// NewBuilder creates a Builder. Empty options fall back to the defaults.
func NewBuilder(fs ports.FileSystem, opts Options, logger ports.Logger) *Builder {
	return &Builder{fs: fs, opts: opts.withDefaults(), logger: logger}
}

// Options returns the effective options.
func (b *Builder) Options() Options {
	return b.opts
}

// ScriptPath returns the absolute path of the SDK initialization script.
func (b *Builder) ScriptPath(profile platform.Profile) string {
	return profile.Join(b.opts.SDKRoot, b.opts.SetEnvScript)
}

// Build returns the environment for arch on profile.
func (b *Builder) Build(ctx context.Context, profile platform.Profile, arch target.Arch) (Environment, error) {
	switch profile.Family() {
	case platform.FamilyWindows:
		return b.buildWindows(ctx, profile, arch)
	case platform.FamilyPOSIX:
		return Environment{}, stage.New(stage.KindNotImplemented,
			"SDK environment for %s is not implemented yet", profile.System()).
			WithSuggestion("build on a Windows host")
	default:
		return Environment{}, stage.New(stage.KindPlatformUnsupported,
			"Compilation for %s not implemented yet", profile.System())
	}
}

func (b *Builder) buildWindows(ctx context.Context, profile platform.Profile, arch target.Arch) (Environment, error) {
	if !arch.IsValid() {
		return Environment{}, stage.New(stage.KindUnsupportedArchitecture,
			"unsupported architecture %q", arch).
			WithSuggestion("use x86 or x64")
	}

	root := b.opts.SDKRoot
	if !b.fs.IsDir(root) {
		return Environment{}, stage.New(stage.KindSdkNotFound, "Windows SDK not found").
			WithPath(root).
			WithSuggestion("install the Windows SDK 7.1 or set sdk_root in the config file")
	}

	script := b.ScriptPath(profile)
	if !b.fs.Exists(script) {
		b.logger.Warn(ctx, "SDK environment script not found", ports.F("path", script))
	}

	shell := b.opts.Shell
	if shell == "" {
		shell = profile.Shell()
	}

	vars := []Var{
		{Name: "WindowsSdkDir", Value: root},
		{Name: "PATH", Value: profile.Join(root, "Bin"), Prepend: true},
		{Name: "QMAKESPEC", Value: b.opts.CompilerSpec},
	}
	setEnv := ports.NewCommand(script, "/Release", arch.Switch(), b.opts.TargetOS)

	env := NewEnvironment(profile, vars, []ports.Command{setEnv}).WithShell(shell)

	b.logger.Debug(ctx, "SDK environment ready",
		ports.F("sdk_root", root),
		ports.F("arch", arch.String()),
		ports.Cmd(env.InitCommand()))

	return env, nil
}
