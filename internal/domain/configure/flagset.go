// Package configure composes and runs Qt's native configure script with the
// install prefix and a fixed, versioned feature-flag set.
package configure

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed flags/*.yaml
var builtinFlags embed.FS

// DefaultFlagSetName names the flag set used when none is configured.
const DefaultFlagSetName = "qt5-msvc"

// FlagSet is an ordered list of configure tokens. Order is significant:
// option values follow their option, e.g. "-skip", "qt3d".
type FlagSet struct {
	Name    string   `yaml:"name" toml:"name"`
	Version string   `yaml:"version" toml:"version"`
	Flags   []string `yaml:"flags" toml:"flags"`
}

// Validate checks that the set is usable. The install prefix is added by
// Compose and must not appear in the set.
func (f FlagSet) Validate() error {
	if len(f.Flags) == 0 {
		return fmt.Errorf("flag set %q has no flags", f.Name)
	}
	for i, flag := range f.Flags {
		if strings.TrimSpace(flag) == "" {
			return fmt.Errorf("flag set %q: flag %d is empty", f.Name, i)
		}
		if flag == "-prefix" || strings.HasPrefix(flag, "-prefix=") {
			return fmt.Errorf("flag set %q must not contain -prefix", f.Name)
		}
	}
	return nil
}

// Tokens returns a copy of the flags.
func (f FlagSet) Tokens() []string {
	return append([]string(nil), f.Flags...)
}

// String returns the flags joined by spaces.
func (f FlagSet) String() string {
	return strings.Join(f.Flags, " ")
}

// ParseFlagSet decodes a flag set document. format is "yaml" or "toml".
func ParseFlagSet(data []byte, format string) (FlagSet, error) {
	var f FlagSet
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return FlagSet{}, fmt.Errorf("failed to parse flag set: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return FlagSet{}, fmt.Errorf("failed to parse flag set: %w", err)
		}
	default:
		return FlagSet{}, fmt.Errorf("unknown flag set format %q", format)
	}
	if err := f.Validate(); err != nil {
		return FlagSet{}, err
	}
	return f, nil
}

// FormatOf returns the document format for path, from its extension.
func FormatOf(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "yml" {
		return "yaml"
	}
	return ext
}

// Builtin returns a flag set shipped with qtforge by name.
func Builtin(name string) (FlagSet, error) {
	data, err := builtinFlags.ReadFile("flags/" + name + ".yaml")
	if err != nil {
		return FlagSet{}, fmt.Errorf("unknown flag set %q", name)
	}
	return ParseFlagSet(data, "yaml")
}

// DefaultFlagSet returns the Qt 5 MSVC flag set.
func DefaultFlagSet() FlagSet {
	f, err := Builtin(DefaultFlagSetName)
	if err != nil {
		panic(err)
	}
	return f
}
