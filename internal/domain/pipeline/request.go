// Package pipeline sequences the build stages through a state machine,
// enforcing each stage's preconditions and stopping at the first failure.
package pipeline

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/domain/target"
)

// Request describes one build job. It is immutable once created.
type Request struct {
	sourceArchive string
	version       string
	arch          target.Arch
	installPath   string
}

// NewRequest validates its inputs and creates a Request. version must be
// MAJOR.MINOR.PATCH.
func NewRequest(sourceArchive, version string, arch target.Arch, installPath string) (Request, error) {
	if strings.TrimSpace(sourceArchive) == "" {
		return Request{}, stage.New(stage.KindPathNotFound, "source archive is required").
			WithSuggestion("pass --qt-sources <archive>")
	}
	if strings.TrimSpace(installPath) == "" {
		return Request{}, stage.New(stage.KindPathNotFound, "install path is required").
			WithSuggestion("pass --install-path <dir>")
	}
	if err := ValidateVersion(version); err != nil {
		return Request{}, err
	}
	if !arch.IsValid() {
		return Request{}, stage.New(stage.KindUnsupportedArchitecture, "unsupported architecture %q", arch).
			WithSuggestion("use --target x86 or --target x64")
	}

	return Request{
		sourceArchive: sourceArchive,
		version:       version,
		arch:          arch,
		installPath:   installPath,
	}, nil
}

// ValidateVersion checks that version is a full MAJOR.MINOR.PATCH version.
func ValidateVersion(version string) error {
	v := "v" + strings.TrimPrefix(version, "v")
	if !semver.IsValid(v) || semver.Canonical(v) != v {
		return stage.New(stage.KindInvalidVersion, "invalid Qt version %q", version).
			WithSuggestion("use MAJOR.MINOR.PATCH, e.g. 5.12.2")
	}
	return nil
}

// SourceArchive returns the archive path as given.
func (r Request) SourceArchive() string {
	return r.sourceArchive
}

// Version returns the Qt version.
func (r Request) Version() string {
	return r.version
}

// MajorMinor returns the version's MAJOR.MINOR, e.g. "5.12".
func (r Request) MajorMinor() string {
	return strings.TrimPrefix(semver.MajorMinor("v"+strings.TrimPrefix(r.version, "v")), "v")
}

// Arch returns the target architecture.
func (r Request) Arch() target.Arch {
	return r.arch
}

// InstallPath returns the install path as given.
func (r Request) InstallPath() string {
	return r.installPath
}
