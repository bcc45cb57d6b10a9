// Package platform classifies the host into the family of build behavior it
// gets. No other package inspects runtime.GOOS.
package platform

import (
	"runtime"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Family is the platform family. Every family-dependent behavior branches on
// it, and only on it.
type Family int

const (
	// FamilyUnsupported is a host qtforge cannot build on.
	FamilyUnsupported Family = iota
	// FamilyWindows is a native Windows host.
	FamilyWindows
	// FamilyPOSIX is Linux, macOS and the BSDs.
	FamilyPOSIX
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyWindows:
		return "windows"
	case FamilyPOSIX:
		return "posix"
	default:
		return "unsupported"
	}
}

// Profile describes the conventions of the host platform.
type Profile struct {
	family Family
	goos   string
	system string
}

// Detector computes the host Profile.
type Detector struct {
	goos     string
	sysname  func() string
	once     sync.Once
	detected Profile
}

// NewDetector creates a Detector for the running host.
func NewDetector() *Detector {
	return &Detector{goos: runtime.GOOS, sysname: hostSysname}
}

// NewDetectorFor creates a Detector that classifies goos instead of the
// running host.
func NewDetectorFor(goos string) *Detector {
	return &Detector{goos: goos, sysname: func() string { return "" }}
}

// Detect returns the host Profile. It never fails; an unknown host yields
// FamilyUnsupported. The result is cached after the first call.
func (d *Detector) Detect() Profile {
	d.once.Do(func() {
		system := d.sysname()
		if system == "" {
			system = titleCase(d.goos)
		}
		d.detected = New(classify(d.goos), d.goos, system)
	})
	return d.detected
}

func classify(goos string) Family {
	switch goos {
	case "windows":
		return FamilyWindows
	case "linux", "android", "darwin", "ios", "freebsd", "openbsd", "netbsd",
		"dragonfly", "solaris", "illumos", "aix":
		return FamilyPOSIX
	default:
		return FamilyUnsupported
	}
}

func titleCase(goos string) string {
	if goos == "" {
		return "Unknown"
	}
	return cases.Title(language.English).String(goos)
}

// New creates a Profile with specified values (for testing).
func New(family Family, goos, system string) Profile {
	return Profile{family: family, goos: goos, system: system}
}

// Windows returns a Windows Profile (for testing).
func Windows() Profile {
	return New(FamilyWindows, "windows", "Windows")
}

// POSIX returns a Linux Profile (for testing).
func POSIX() Profile {
	return New(FamilyPOSIX, "linux", "Linux")
}

// Family returns the platform family.
func (p Profile) Family() Family {
	return p.family
}

// GOOS returns the Go name of the operating system.
func (p Profile) GOOS() string {
	return p.goos
}

// System returns the human-readable host name, e.g. "Linux" or "Plan9".
func (p Profile) System() string {
	return p.system
}

// Supported returns true if builds are implemented or planned for the family.
func (p Profile) Supported() bool {
	return p.family != FamilyUnsupported
}

// IsWindows returns true for the Windows family.
func (p Profile) IsWindows() bool {
	return p.family == FamilyWindows
}

// IsPOSIX returns true for the POSIX family.
func (p Profile) IsPOSIX() bool {
	return p.family == FamilyPOSIX
}

// ListSeparator returns the separator of PATH-like lists.
func (p Profile) ListSeparator() string {
	if p.IsWindows() {
		return ";"
	}
	return ":"
}

// PathSeparator returns the directory separator.
func (p Profile) PathSeparator() string {
	if p.IsWindows() {
		return `\`
	}
	return "/"
}

// ScriptExt returns the extension of native shell scripts such as configure.
func (p Profile) ScriptExt() string {
	if p.IsWindows() {
		return ".bat"
	}
	return ""
}

// ExeSuffix returns the suffix of executables.
func (p Profile) ExeSuffix() string {
	if p.IsWindows() {
		return ".exe"
	}
	return ""
}

// Shell returns the command interpreter used to chain statements.
func (p Profile) Shell() string {
	if p.IsWindows() {
		return "cmd.exe"
	}
	return "sh"
}

// Executable returns name with the executable suffix appended.
func (p Profile) Executable(name string) string {
	return name + p.ExeSuffix()
}

// String returns a human-readable description.
func (p Profile) String() string {
	return p.system + "/" + p.family.String()
}
