package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/domain/extract"
	"github.com/felixgeelhaar/qtforge/internal/domain/paths"
	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/sdkenv"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/domain/target"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// Pipeline events.
const (
	EventValidated   = "VALIDATED"
	EventUnpacked    = "UNPACKED"
	EventEnvReady    = "ENV_READY"
	EventConfigured  = "CONFIGURED"
	EventBuilt       = "BUILT"
	EventAbort       = "ABORT"
	EventUnsupported = "UNSUPPORTED"
)

// Machine state IDs, one per stage.Name.
const (
	stateInit                = "init"
	stateSourcesValidated    = "sources_validated"
	stateUnpacked            = "unpacked"
	stateEnvironmentReady    = "environment_ready"
	stateConfigured          = "configured"
	stateBuildCompleted      = "build_completed"
	stateAborted             = "aborted"
	statePlatformUnsupported = "platform_unsupported"
)

// SourceResolver validates the request paths.
type SourceResolver interface {
	ResolveSource(archive, installPath string) (paths.Resolved, error)
}

// EnvironmentBuilder derives the SDK environment.
type EnvironmentBuilder interface {
	Build(ctx context.Context, profile platform.Profile, arch target.Arch) (sdkenv.Environment, error)
}

// ConfigureInvoker composes and runs configure.
type ConfigureInvoker interface {
	Compose(installPath, sourceDir string, env sdkenv.Environment) configure.Command
	Run(ctx context.Context, cmd configure.Command, mode configure.Mode) stage.Result
}

// Compiler runs the native build and install.
type Compiler interface {
	Run(ctx context.Context, sourceDir, installPath string, env sdkenv.Environment, mode configure.Mode) stage.Result
}

// Components are the stage implementations the orchestrator drives.
type Components struct {
	Resolver    SourceResolver
	Extractor   extract.Extractor
	Environment EnvironmentBuilder
	Configure   ConfigureInvoker
	Compiler    Compiler // Only used when Options.Compile is set
}

// Options controls how far the pipeline goes and whether commands run.
type Options struct {
	ConfigureMode configure.Mode
	Compile       bool
	RunID         string // Generated when empty
}

// Orchestrator runs the build pipeline. A single Orchestrator may run
// several requests, one at a time.
type Orchestrator struct {
	profile    platform.Profile
	fs         ports.FileSystem
	components Components
	opts       Options
	logger     ports.Logger
}

// New creates an Orchestrator.
func New(profile platform.Profile, fs ports.FileSystem, components Components, opts Options, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		profile:    profile,
		fs:         fs,
		components: components,
		opts:       opts,
		logger:     logger,
	}
}

// abort is the payload of EventAbort.
type abort struct {
	at  stage.Name
	err *stage.Error
}

// run is the mutable state of one pipeline run, updated by machine actions.
type run struct {
	abortedAt stage.Name
	failed    *stage.Error
}

func buildMachine(r *run) (*statekit.Interpreter[run], error) {
	machine, err := statekit.NewMachine[run]("qtforge-pipeline").
		WithInitial(stateInit).
		WithContext(run{}).
		WithAction("recordAbort", func(_ *run, event statekit.Event) {
			if a, ok := event.Payload.(abort); ok {
				r.abortedAt = a.at
				r.failed = a.err
			}
		}).
		State(stateInit).
		On(EventValidated).Target(stateSourcesValidated).
		On(EventUnsupported).Target(statePlatformUnsupported).
		On(EventAbort).Target(stateAborted).Done().
		State(stateSourcesValidated).
		On(EventUnpacked).Target(stateUnpacked).
		On(EventAbort).Target(stateAborted).Done().
		State(stateUnpacked).
		On(EventEnvReady).Target(stateEnvironmentReady).
		On(EventAbort).Target(stateAborted).Done().
		State(stateEnvironmentReady).
		On(EventConfigured).Target(stateConfigured).
		On(EventAbort).Target(stateAborted).Done().
		State(stateConfigured).
		On(EventBuilt).Target(stateBuildCompleted).
		On(EventAbort).Target(stateAborted).Done().
		State(stateBuildCompleted).
		Done().
		State(stateAborted).
		OnEntry("recordAbort").Done().
		State(statePlatformUnsupported).
		OnEntry("recordAbort").Done().
		Build()
	if err != nil {
		return nil, err
	}
	return statekit.NewInterpreter(machine), nil
}

// Run executes the pipeline for req. It never panics on stage failure;
// every failure is reported in the Outcome.
func (o *Orchestrator) Run(ctx context.Context, req Request) Outcome {
	started := time.Now()
	runID := o.opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := o.logger.With(ports.F("run_id", runID))
	out := Outcome{RunID: runID, State: stage.Init}

	r := &run{}
	interp, err := buildMachine(r)
	if err != nil {
		out.Failed = stage.New(stage.KindBuildFailed, "failed to build pipeline state machine").WithUnderlying(err)
		out.State = stage.Aborted
		out.AbortedAt = stage.Init
		out.ExitCode = ExitFailure
		out.Message = out.Failed.Error()
		return out
	}
	interp.Start()
	defer interp.Stop()

	finish := func() Outcome {
		out.State = stage.Name(interp.State().Value)
		out.AbortedAt = r.abortedAt
		out.Failed = r.failed
		out.Duration = time.Since(started)
		if r.failed != nil {
			out.ExitCode = ExitCodeOf(r.failed)
			out.Message = r.failed.Error()
			logger.Error(ctx, "pipeline aborted",
				ports.F("stage", string(r.abortedAt)),
				ports.F("kind", string(r.failed.Kind)),
				ports.Err(r.failed))
		} else {
			out.Message = fmt.Sprintf("pipeline reached %s", out.State)
			logger.Info(ctx, "pipeline finished", ports.F("state", string(out.State)), ports.F("duration", out.Duration))
		}
		return out
	}

	fail := func(result stage.Result) Outcome {
		out.Results = append(out.Results, result)
		interp.Send(statekit.Event{Type: EventAbort, Payload: abort{at: result.Stage(), err: result.Err()}})
		return finish()
	}

	advance := func(event string, result stage.Result) {
		out.Results = append(out.Results, result)
		logger.Info(ctx, "stage completed",
			ports.F("stage", string(result.Stage())),
			ports.F("duration", result.Duration()))
		interp.Send(statekit.Event{Type: statekit.EventType(event), Payload: result.Stage()})
	}

	if !o.profile.Supported() {
		msg := fmt.Sprintf("Compilation for %s not implemented yet", o.profile.System())
		interp.Send(statekit.Event{
			Type:    EventUnsupported,
			Payload: abort{at: stage.Init, err: stage.New(stage.KindPlatformUnsupported, "%s", msg)},
		})
		return finish()
	}

	logger.Info(ctx, "starting build",
		ports.F("archive", req.SourceArchive()),
		ports.F("version", req.Version()),
		ports.F("arch", req.Arch().String()),
		ports.F("install_path", req.InstallPath()),
		ports.F("platform", o.profile.String()))

	// sources_validated
	t := time.Now()
	resolved, err := o.components.Resolver.ResolveSource(req.SourceArchive(), req.InstallPath())
	if err != nil {
		return fail(stage.Failed(stage.SourcesValidated,
			stage.From(err, stage.KindPathNotFound, "source validation failed")).WithDuration(time.Since(t)))
	}
	out.Paths = resolved
	advance(EventValidated, stage.Succeeded(stage.SourcesValidated).WithDuration(time.Since(t)))

	// unpacked
	t = time.Now()
	if err := o.fs.Chdir(resolved.Dir); err != nil {
		return fail(stage.Failed(stage.Unpacked, stage.New(stage.KindPathNotFound, "cannot enter the archive directory").
			WithPath(resolved.Dir).
			WithUnderlying(err)))
	}
	result := o.components.Extractor.Extract(ctx, resolved.Archive, resolved.Destination).WithDuration(time.Since(t))
	if !result.Success() {
		return fail(result)
	}
	advance(EventUnpacked, result)

	// environment_ready
	t = time.Now()
	env, err := o.components.Environment.Build(ctx, o.profile, req.Arch())
	if err != nil {
		return fail(stage.Failed(stage.EnvironmentReady,
			stage.From(err, stage.KindSdkNotFound, "environment setup failed")).WithDuration(time.Since(t)))
	}
	advance(EventEnvReady, stage.Succeeded(stage.EnvironmentReady).WithDuration(time.Since(t)))

	// configured
	t = time.Now()
	sourceDir := o.SourceRoot(resolved)
	cmd := o.components.Configure.Compose(resolved.InstallPath, sourceDir, env)
	result = o.components.Configure.Run(ctx, cmd, o.opts.ConfigureMode).WithDuration(time.Since(t))
	if !result.Success() {
		return fail(result)
	}
	advance(EventConfigured, result)

	if !o.opts.Compile {
		return finish()
	}

	// build_completed
	t = time.Now()
	result = o.components.Compiler.Run(ctx, sourceDir, resolved.InstallPath, env, o.opts.ConfigureMode).WithDuration(time.Since(t))
	if !result.Success() {
		return fail(result)
	}
	advance(EventBuilt, result)

	return finish()
}

// SourceRoot returns the directory holding the configure script. Archives
// usually contain a single top-level directory named like the archive, so
// destination/<base> is tried when destination itself has no script.
func (o *Orchestrator) SourceRoot(resolved paths.Resolved) string {
	script := "configure" + o.profile.ScriptExt()
	if o.fs.Exists(filepath.Join(resolved.Destination, script)) {
		return resolved.Destination
	}
	nested := filepath.Join(resolved.Destination, resolved.BaseName)
	if o.fs.Exists(filepath.Join(nested, script)) {
		return nested
	}
	return resolved.Destination
}
