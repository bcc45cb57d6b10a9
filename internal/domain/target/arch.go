// Package target defines the architectures a toolkit build can target.
package target

import (
	"strings"

	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
)

// Arch is a target CPU architecture. The set is closed.
type Arch string

const (
	X86 Arch = "x86"
	X64 Arch = "x64"
)

// Default is the architecture used when none is requested.
const Default = X64

// Supported returns every supported architecture.
func Supported() []Arch {
	return []Arch{X86, X64}
}

// IsValid reports whether a is a supported architecture.
func (a Arch) IsValid() bool {
	switch a {
	case X86, X64:
		return true
	default:
		return false
	}
}

// String returns the architecture as string.
func (a Arch) String() string {
	return string(a)
}

// Switch returns the SDK script switch selecting a, e.g. "/x64".
func (a Arch) Switch() string {
	return "/" + string(a)
}

// Parse returns the canonical Arch for value. Common aliases such as
// "amd64" and "i386" are accepted.
func Parse(value string) (Arch, error) {
	if arch := Normalize(value); arch != "" {
		return arch, nil
	}
	return "", stage.New(stage.KindUnsupportedArchitecture,
		"unsupported architecture %q (supported: %s)", value, strings.Join(supportedStrings(), ", ")).
		WithSuggestion("use --target x86 or --target x64")
}

// MustParse is like Parse but panics on error.
func MustParse(value string) Arch {
	arch, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return arch
}

// Normalize maps value to a canonical Arch, or "" when it cannot.
func Normalize(value string) Arch {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "x64", "amd64", "x86_64", "x86-64":
		return X64
	case "x86", "386", "i386", "i686", "win32":
		return X86
	default:
		return ""
	}
}

func supportedStrings() []string {
	all := Supported()
	out := make([]string, 0, len(all))
	for _, a := range all {
		out = append(out, a.String())
	}
	return out
}
