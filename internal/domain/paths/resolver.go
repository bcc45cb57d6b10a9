// Package paths validates the source archive and install location and
// derives every path the later stages use.
package paths

import (
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// Resolved holds the absolute paths derived from a build request.
type Resolved struct {
	Archive     string // Absolute path of the source archive
	Dir         string // Directory containing the archive
	BaseName    string // Archive file name without its final extension
	Destination string // Dir joined with BaseName; where sources are unpacked
	InstallPath string // Absolute install prefix
}

// Resolver checks paths against a file system. It never spawns a process.
type Resolver struct {
	fs ports.FileSystem
}

// NewResolver creates a Resolver backed by fs.
func NewResolver(fs ports.FileSystem) *Resolver {
	return &Resolver{fs: fs}
}

// ResolveSource validates archive and derives the unpack destination from it.
// The install path does not need to exist yet.
func (r *Resolver) ResolveSource(archive, installPath string) (Resolved, error) {
	abs, err := r.fs.Abs(ports.ExpandPath(archive))
	if err != nil {
		return Resolved{}, stage.New(stage.KindPathNotFound, "cannot resolve source archive").
			WithPath(archive).WithUnderlying(err)
	}

	info, err := r.fs.GetFileInfo(abs)
	if err != nil {
		return Resolved{}, stage.New(stage.KindPathNotFound, "source archive not found").
			WithPath(abs).
			WithUnderlying(err).
			WithSuggestion("check the --qt-sources path")
	}
	if info.IsDir {
		return Resolved{}, stage.New(stage.KindNotAFile, "source archive is a directory").
			WithPath(abs).
			WithSuggestion("pass the archive file itself, e.g. qt-everywhere-src-5.12.2.7z")
	}

	name := filepath.Base(abs)
	base, err := BaseName(name)
	if err != nil {
		return Resolved{}, err
	}

	install, err := r.fs.Abs(ports.ExpandPath(installPath))
	if err != nil {
		return Resolved{}, stage.New(stage.KindPathNotFound, "cannot resolve install path").
			WithPath(installPath).WithUnderlying(err)
	}

	dir := filepath.Dir(abs)
	return Resolved{
		Archive:     abs,
		Dir:         dir,
		BaseName:    base,
		Destination: filepath.Join(dir, base),
		InstallPath: install,
	}, nil
}

// ContainingDirectory returns the absolute directory that contains path.
func (r *Resolver) ContainingDirectory(path string) (string, error) {
	abs, err := r.fs.Abs(ports.ExpandPath(path))
	if err != nil || !r.fs.Exists(abs) {
		e := stage.New(stage.KindPathNotFound, "path not found").WithPath(path)
		if err != nil {
			e = e.WithUnderlying(err)
		}
		return "", e
	}
	return filepath.Dir(abs), nil
}

// BaseName strips exactly the final extension from a file name:
// "qt-5.12.2.7z" becomes "qt-5.12.2" and "src.tar.xz" becomes "src.tar".
func BaseName(filename string) (string, error) {
	i := strings.LastIndex(filename, ".")
	if i <= 0 {
		return "", stage.New(stage.KindMalformedName, "archive name has no extension").
			WithPath(filename).
			WithSuggestion("archive names look like qt-everywhere-src-5.12.2.7z")
	}
	return filename[:i], nil
}
