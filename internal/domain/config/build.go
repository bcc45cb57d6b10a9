package config

import (
	"github.com/felixgeelhaar/qtforge/internal/domain/compile"
	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/domain/extract"
	"github.com/felixgeelhaar/qtforge/internal/domain/sdkenv"
)

// BuildConfig holds the user-tunable build settings. Empty fields keep the
// component defaults.
type BuildConfig struct {
	Extractor           string   `yaml:"extractor,omitempty" toml:"extractor,omitempty"`
	ExtractorCandidates []string `yaml:"extractor_candidates,omitempty" toml:"extractor_candidates,omitempty"`
	ExtractorTemplate   []string `yaml:"extractor_template,omitempty" toml:"extractor_template,omitempty"`
	SDKRoot             string   `yaml:"sdk_root,omitempty" toml:"sdk_root,omitempty"`
	SDKScript           string   `yaml:"sdk_script,omitempty" toml:"sdk_script,omitempty"`
	CompilerSpec        string   `yaml:"compiler_spec,omitempty" toml:"compiler_spec,omitempty"`
	Shell               string   `yaml:"shell,omitempty" toml:"shell,omitempty"`
	MakeTool            string   `yaml:"make_tool,omitempty" toml:"make_tool,omitempty"`
	MakeArgs            []string `yaml:"make_args,omitempty" toml:"make_args,omitempty"`
	FlagSet             string   `yaml:"flag_set,omitempty" toml:"flag_set,omitempty"`
	FeatureFlags        []string `yaml:"feature_flags,omitempty" toml:"feature_flags,omitempty"`
	FeatureFlagsFile    string   `yaml:"feature_flags_file,omitempty" toml:"feature_flags_file,omitempty"`

	// source is the file the config was loaded from, if any.
	source string
}

// Default returns a BuildConfig that keeps every default.
func Default() *BuildConfig {
	return &BuildConfig{}
}

// Source returns the path the config was loaded from, or "".
func (c *BuildConfig) Source() string {
	return c.source
}

// Validate checks the values that can be checked without touching disk.
func (c *BuildConfig) Validate() error {
	errs := NewErrorList()

	if _, err := extract.ParseMethod(c.Extractor); err != nil {
		errs.AddValidation("extractor", err.Error(), "Use external or builtin.")
	}
	if len(c.ExtractorTemplate) > 0 || len(c.ExtractorCandidates) > 0 {
		if err := c.ExtractOptions("").Validate(); err != nil {
			errs.AddValidation("extractor_template", err.Error(),
				"The template must reference {archive} and {destination}, e.g. [x, -y, \"{archive}\", \"-o{destination}\", -r].")
		}
	}
	if len(c.FeatureFlags) > 0 && c.FeatureFlagsFile != "" {
		errs.AddValidation("feature_flags", "feature_flags and feature_flags_file are mutually exclusive",
			"Keep the inline list or the file reference, not both.")
	}
	if len(c.FeatureFlags) > 0 {
		if err := (configure.FlagSet{Name: "inline", Flags: c.FeatureFlags}).Validate(); err != nil {
			errs.AddValidation("feature_flags", err.Error(), "The install prefix is set with --install-path.")
		}
	}
	if c.FlagSet != "" {
		if _, err := configure.Builtin(c.FlagSet); err != nil {
			errs.AddValidation("flag_set", err.Error(), "Run 'qtforge flags' to see the built-in flag set.")
		}
	}

	return errs.AsError()
}

// ExtractMethod returns the configured extraction method.
func (c *BuildConfig) ExtractMethod() extract.Method {
	m, err := extract.ParseMethod(c.Extractor)
	if err != nil {
		return extract.MethodExternal
	}
	return m
}

// ExtractOptions returns the external extractor options searching searchPath.
func (c *BuildConfig) ExtractOptions(searchPath string) extract.Options {
	opts := extract.DefaultOptions(searchPath)
	if len(c.ExtractorCandidates) > 0 {
		opts.Candidates = append([]string(nil), c.ExtractorCandidates...)
	}
	if len(c.ExtractorTemplate) > 0 {
		opts.Template = append([]string(nil), c.ExtractorTemplate...)
	}
	return opts
}

// SDKOptions returns the environment builder options.
func (c *BuildConfig) SDKOptions() sdkenv.Options {
	return sdkenv.Options{
		SDKRoot:      c.SDKRoot,
		SetEnvScript: c.SDKScript,
		CompilerSpec: c.CompilerSpec,
		Shell:        c.Shell,
	}
}

// CompileOptions returns the build stage options.
func (c *BuildConfig) CompileOptions() compile.Options {
	return compile.Options{
		MakeTool: c.MakeTool,
		Args:     append([]string(nil), c.MakeArgs...),
	}
}
