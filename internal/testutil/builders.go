package testutil

import (
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigBuilder builds qtforge config documents for tests.
type ConfigBuilder struct {
	doc map[string]interface{}
}

// NewConfigBuilder creates an empty config document.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{doc: map[string]interface{}{}}
}

// Set sets an arbitrary key, for fields without a dedicated method.
func (b *ConfigBuilder) Set(key string, value interface{}) *ConfigBuilder {
	b.doc[key] = value
	return b
}

// WithExtractor sets the extraction method.
func (b *ConfigBuilder) WithExtractor(method string) *ConfigBuilder {
	return b.Set("extractor", method)
}

// WithArchiver sets the archiver candidates and argument template.
func (b *ConfigBuilder) WithArchiver(candidates []string, template ...string) *ConfigBuilder {
	b.Set("extractor_candidates", candidates)
	if len(template) > 0 {
		b.Set("extractor_template", template)
	}
	return b
}

// WithSDK sets the SDK root and, if non-empty, the init script.
func (b *ConfigBuilder) WithSDK(root, script string) *ConfigBuilder {
	b.Set("sdk_root", root)
	if script != "" {
		b.Set("sdk_script", script)
	}
	return b
}

// WithMake sets the build tool and its arguments.
func (b *ConfigBuilder) WithMake(tool string, args ...string) *ConfigBuilder {
	b.Set("make_tool", tool)
	if len(args) > 0 {
		b.Set("make_args", args)
	}
	return b
}

// WithFeatureFlags sets an inline feature flag list.
func (b *ConfigBuilder) WithFeatureFlags(flags ...string) *ConfigBuilder {
	return b.Set("feature_flags", flags)
}

// WithFeatureFlagsFile references a flag set document.
func (b *ConfigBuilder) WithFeatureFlagsFile(path string) *ConfigBuilder {
	return b.Set("feature_flags_file", path)
}

// ToYAML renders the document as YAML.
func (b *ConfigBuilder) ToYAML() string {
	data, err := yaml.Marshal(b.doc)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// ToTOML renders the document as TOML.
func (b *ConfigBuilder) ToTOML() string {
	data, err := toml.Marshal(b.doc)
	if err != nil {
		panic(err)
	}
	return string(data)
}
