package platform

import (
	"regexp"
	"strings"
)

// windowsPathRegex matches Windows paths like C:\Users or C:/Users.
var windowsPathRegex = regexp.MustCompile(`^([A-Za-z]):[/\\](.*)$`)

// IsWindowsPath returns true if the path looks like a Windows path.
func IsWindowsPath(path string) bool {
	return windowsPathRegex.MatchString(path)
}

// Join joins path elements with the profile's separator. Unlike
// filepath.Join it produces Windows paths on any host, so composed commands
// can be inspected anywhere.
func (p Profile) Join(elem ...string) string {
	sep := p.PathSeparator()
	parts := make([]string, 0, len(elem))
	for i, e := range elem {
		e = p.NormalizePath(e)
		if i == 0 && e != "" && strings.Trim(e, sep) == "" {
			parts = append(parts, "")
			continue
		}
		if i > 0 {
			e = strings.TrimLeft(e, sep)
		}
		if i < len(elem)-1 {
			e = strings.TrimRight(e, sep)
		}
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, sep)
}

// NormalizePath converts separators to the profile's convention.
func (p Profile) NormalizePath(path string) string {
	if p.IsWindows() {
		return strings.ReplaceAll(path, "/", `\`)
	}
	return strings.ReplaceAll(path, `\`, "/")
}

// SplitList splits a PATH-like value, dropping empty entries.
func (p Profile) SplitList(value string) []string {
	var out []string
	for _, entry := range strings.Split(value, p.ListSeparator()) {
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

// JoinList joins entries into a PATH-like value.
func (p Profile) JoinList(entries ...string) string {
	return strings.Join(entries, p.ListSeparator())
}
