package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// Loader loads configuration from the filesystem.
type Loader struct {
	fs ports.FileSystem
}

// NewLoader creates a new Loader.
func NewLoader(fsys ports.FileSystem) *Loader {
	return &Loader{fs: fsys}
}

// Load reads a YAML or TOML config, chosen by extension. An empty path
// returns the defaults; a named file that does not exist is an error.
func (l *Loader) Load(path string) (*BuildConfig, error) {
	if path == "" {
		return Default(), nil
	}
	path = ports.ExpandPath(path)

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewConfigNotFoundError(path)
		}
		return nil, NewUserError(ErrCodeConfigInvalid, "cannot read configuration file").
			WithContext(path).WithUnderlying(err)
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a config document. path selects the format and is used in
// error messages.
func Parse(data []byte, path string) (*BuildConfig, error) {
	cfg := Default()
	cfg.source = path

	switch configure.FormatOf(path) {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, NewYAMLParseError(path, err)
		}
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, NewTOMLParseError(path, err)
		}
	default:
		return nil, NewUnsupportedFormatError(path)
	}

	return cfg, nil
}

// FlagSet resolves the feature flags: an inline list, then a flag file
// relative to the config file, then a built-in set by name, then the default.
// Validate rejects configs that set both the inline list and the file.
func (l *Loader) FlagSet(cfg *BuildConfig) (configure.FlagSet, error) {
	switch {
	case len(cfg.FeatureFlags) > 0:
		return configure.FlagSet{Name: "inline", Flags: append([]string(nil), cfg.FeatureFlags...)}, nil

	case cfg.FeatureFlagsFile != "":
		path := ports.ExpandPath(cfg.FeatureFlagsFile)
		if !filepath.IsAbs(path) && cfg.source != "" {
			path = filepath.Join(filepath.Dir(cfg.source), path)
		}
		data, err := l.fs.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return configure.FlagSet{}, NewFlagsNotFoundError(path)
			}
			return configure.FlagSet{}, NewUserError(ErrCodeConfigInvalid, "cannot read feature flag file").
				WithContext(path).WithUnderlying(err)
		}
		flags, err := configure.ParseFlagSet(data, configure.FormatOf(path))
		if err != nil {
			return configure.FlagSet{}, NewUserError(ErrCodeConfigParse, "invalid feature flag file").
				WithContext(path).WithUnderlying(err)
		}
		return flags, nil

	case cfg.FlagSet != "":
		return configure.Builtin(cfg.FlagSet)

	default:
		return configure.DefaultFlagSet(), nil
	}
}
