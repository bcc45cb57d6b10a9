package app

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/qtforge/internal/domain/compile"
	"github.com/felixgeelhaar/qtforge/internal/domain/config"
	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/domain/extract"
	"github.com/felixgeelhaar/qtforge/internal/domain/paths"
	"github.com/felixgeelhaar/qtforge/internal/domain/pipeline"
	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/sdkenv"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
)

// PlanStep is one command the pipeline would run.
type PlanStep struct {
	Stage   stage.Name
	Command string
	Note    string
}

// Plan lists the commands of a build without running any of them.
type Plan struct {
	Profile platform.Profile
	Paths   paths.Resolved
	FlagSet configure.FlagSet
	Steps   []PlanStep
}

// Plan validates req and composes every command the pipeline would run.
// Nothing is executed and the working directory is left alone. An archiver
// that cannot be found is reported in the step note.
func (f *Forge) Plan(ctx context.Context, req pipeline.Request, opts Options) (*Plan, error) {
	if !f.profile.Supported() {
		return nil, stage.New(stage.KindPlatformUnsupported, "Compilation for %s not implemented yet", f.profile.System())
	}

	cfg, err := f.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	flags, err := config.NewLoader(f.fs).FlagSet(cfg)
	if err != nil {
		return nil, err
	}

	resolved, err := paths.NewResolver(f.fs).ResolveSource(req.SourceArchive(), req.InstallPath())
	if err != nil {
		return nil, err
	}

	plan := &Plan{Profile: f.profile, Paths: resolved, FlagSet: flags}

	step, err := f.extractStep(cfg, opts, resolved)
	if err != nil {
		return nil, err
	}
	plan.Steps = append(plan.Steps, step)

	env, err := sdkenv.NewBuilder(f.fs, cfg.SDKOptions(), f.logger).Build(ctx, f.profile, req.Arch())
	if err != nil {
		return nil, err
	}
	plan.Steps = append(plan.Steps, PlanStep{
		Stage:   stage.EnvironmentReady,
		Command: env.InitCommand().String(),
	})

	orchestrator := pipeline.New(f.profile, f.fs, pipeline.Components{}, pipeline.Options{}, f.logger)
	sourceDir := orchestrator.SourceRoot(resolved)

	invoker := configure.NewInvoker(f.profile, flags, f.runner, f.logger)
	plan.Steps = append(plan.Steps, PlanStep{
		Stage:   stage.Configured,
		Command: invoker.Compose(resolved.InstallPath, sourceDir, env).String(),
		Note:    "in " + sourceDir,
	})

	if opts.Compile {
		builder := compile.NewBuilder(f.profile, cfg.CompileOptions(), f.fs, f.runner, f.logger)
		for _, cmd := range builder.Compose(sourceDir, env) {
			plan.Steps = append(plan.Steps, PlanStep{
				Stage:   stage.BuildCompleted,
				Command: cmd.String(),
				Note:    "in " + sourceDir,
			})
		}
	}

	return plan, nil
}

func (f *Forge) extractStep(cfg *config.BuildConfig, opts Options, resolved paths.Resolved) (PlanStep, error) {
	method, err := f.method(cfg, opts)
	if err != nil {
		return PlanStep{}, err
	}

	if method == extract.MethodBuiltin {
		format, err := extract.DetectFormat(resolved.Archive)
		if err != nil {
			return PlanStep{}, stage.New(stage.KindExtractionFailed, "%v", err).
				WithPath(resolved.Archive).
				WithSuggestion("use the external extractor (7-Zip) for this archive")
		}
		return PlanStep{
			Stage: stage.Unpacked,
			Note:  fmt.Sprintf("builtin %s extraction of %s into %s", format, resolved.Archive, resolved.Destination),
		}, nil
	}

	external := f.external(cfg)
	tool, err := external.Locate()
	note := "in " + resolved.Dir
	if err != nil {
		tool = external.Candidates()[0]
		note = "archiver not found on the search path"
	}
	return PlanStep{
		Stage:   stage.Unpacked,
		Command: external.Compose(tool, resolved.Archive, resolved.Destination).String(),
		Note:    note,
	}, nil
}
