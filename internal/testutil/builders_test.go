package testutil

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigBuilder_YAML(t *testing.T) {
	t.Parallel()

	doc := NewConfigBuilder().
		WithExtractor("builtin").
		WithSDK(`D:\sdk`, "").
		WithMake("jom", "/J", "8").
		ToYAML()

	AssertYAMLEquals(t, "extractor: builtin\nsdk_root: 'D:\\sdk'\nmake_tool: jom\nmake_args: [/J, \"8\"]\n", doc)
}

func TestConfigBuilder_TOML(t *testing.T) {
	t.Parallel()

	doc := NewConfigBuilder().WithFeatureFlags("-release", "-opensource").ToTOML()

	var got map[string]interface{}
	require.NoError(t, toml.Unmarshal([]byte(doc), &got))
	assert.Equal(t, []interface{}{"-release", "-opensource"}, got["feature_flags"])
}

func TestConfigBuilder_Archiver(t *testing.T) {
	t.Parallel()

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(NewConfigBuilder().WithArchiver([]string{"7za"}).ToYAML()), &got))
	assert.Equal(t, []interface{}{"7za"}, got["extractor_candidates"])
	assert.NotContains(t, got, "extractor_template")
}
