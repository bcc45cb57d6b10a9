package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/domain/extract"
	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/sdkenv"
)

// Check is one doctor finding.
type Check struct {
	Name       string
	OK         bool
	Detail     string
	Suggestion string
}

// Report is the result of Doctor.
type Report struct {
	Profile platform.Profile
	Checks  []Check
}

// Healthy returns true if every check passed.
func (r Report) Healthy() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass.
func (r Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.OK {
			failed = append(failed, c)
		}
	}
	return failed
}

// Doctor inspects the host without running anything: platform support,
// the configured extractor, the SDK installation and the flag set.
func (f *Forge) Doctor(_ context.Context, opts Options) Report {
	report := Report{Profile: f.profile}

	report.Checks = append(report.Checks, Check{
		Name:       "platform",
		OK:         f.profile.IsWindows(),
		Detail:     f.profile.String(),
		Suggestion: platformSuggestion(f.profile),
	})

	cfg, err := f.LoadConfig(opts.ConfigPath)
	if err != nil {
		report.Checks = append(report.Checks, Check{
			Name:       "config",
			Detail:     err.Error(),
			Suggestion: "fix or remove the --config file",
		})
		return report
	}
	source := cfg.Source()
	if source == "" {
		source = "defaults"
	}
	report.Checks = append(report.Checks, Check{Name: "config", OK: true, Detail: source})

	method, err := f.method(cfg, opts)
	switch {
	case err != nil:
		report.Checks = append(report.Checks, Check{Name: "extractor", Detail: err.Error()})
	case method == extract.MethodBuiltin:
		report.Checks = append(report.Checks, Check{
			Name:   "extractor",
			OK:     true,
			Detail: "builtin (zip, tar, tar.gz, tar.xz, tar.zst)",
		})
	default:
		external := f.external(cfg)
		tool, err := external.Locate()
		check := Check{Name: "extractor", OK: err == nil, Detail: tool}
		if err != nil {
			check.Detail = "none of " + strings.Join(external.Candidates(), ", ") + " found on PATH"
			check.Suggestion = "install 7-Zip or use --extractor builtin for zip and tar archives"
		}
		report.Checks = append(report.Checks, check)
	}

	if f.profile.IsWindows() {
		builder := sdkenv.NewBuilder(f.fs, cfg.SDKOptions(), f.logger)
		root := builder.Options().SDKRoot
		report.Checks = append(report.Checks, Check{
			Name:       "sdk",
			OK:         f.fs.IsDir(root),
			Detail:     root,
			Suggestion: "install the Windows SDK 7.1 or set sdk_root in the config file",
		})
		script := builder.ScriptPath(f.profile)
		report.Checks = append(report.Checks, Check{
			Name:       "sdk script",
			OK:         f.fs.Exists(script),
			Detail:     script,
			Suggestion: "set sdk_script in the config file",
		})
	}

	flags, err := f.Flags(opts.ConfigPath)
	if err != nil {
		report.Checks = append(report.Checks, Check{Name: "flags", Detail: err.Error()})
	} else {
		report.Checks = append(report.Checks, Check{
			Name:   "flags",
			OK:     true,
			Detail: flagSetLabel(flags),
		})
	}

	return report
}

func flagSetLabel(flags configure.FlagSet) string {
	label := flags.Name
	if flags.Version != "" {
		label += " for Qt " + flags.Version
	}
	return fmt.Sprintf("%s (%d flags)", label, len(flags.Flags))
}

func platformSuggestion(p platform.Profile) string {
	switch {
	case p.IsWindows():
		return ""
	case p.IsPOSIX():
		return "only Windows builds are implemented; plan and flags still work"
	default:
		return "this host cannot build Qt"
	}
}
