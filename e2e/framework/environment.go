//go:build e2e

// Package framework provides the E2E test infrastructure for qtforge.
package framework

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// Environment is an isolated directory tree holding source archives, config
// files and install prefixes for one test.
type Environment struct {
	t          *testing.T
	rootDir    string
	binaryPath string
}

var (
	buildOnce  sync.Once
	binaryPath string
	buildErr   error
)

// findProjectRoot locates the project root directory.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// buildBinary builds the qtforge binary once per test run.
func buildBinary(t *testing.T) (string, error) {
	buildOnce.Do(func() {
		root, err := findProjectRoot()
		if err != nil {
			buildErr = err
			return
		}

		binaryPath = filepath.Join(os.TempDir(), "qtforge-e2e-test")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/qtforge")
		cmd.Dir = root

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			buildErr = err
			t.Logf("Build stderr: %s", stderr.String())
		}
	})

	return binaryPath, buildErr
}

// NewEnvironment creates a new isolated test environment.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	binary, err := buildBinary(t)
	if err != nil {
		t.Fatalf("Failed to build binary: %v", err)
	}

	return &Environment{
		t:          t,
		rootDir:    t.TempDir(),
		binaryPath: binary,
	}
}

// RootDir returns the path to the test root directory.
func (e *Environment) RootDir() string {
	return e.rootDir
}

// BinaryPath returns the path to the built binary.
func (e *Environment) BinaryPath() string {
	return e.binaryPath
}

// Path returns the absolute path of rel inside the environment.
func (e *Environment) Path(rel string) string {
	return filepath.Join(e.rootDir, filepath.FromSlash(rel))
}

// WriteFile writes content to a file in the test environment.
func (e *Environment) WriteFile(path, content string) string {
	e.t.Helper()

	fullPath := e.Path(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		e.t.Fatalf("Failed to create directory for %s: %v", fullPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		e.t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
	return fullPath
}

// WriteConfig writes a qtforge.yaml config file and returns its path.
func (e *Environment) WriteConfig(content string) string {
	e.t.Helper()
	return e.WriteFile("qtforge.yaml", content)
}

// WriteSourceArchive writes a .tar.gz archive named name containing a
// single top-level directory with the given files, and returns its path.
func (e *Environment) WriteSourceArchive(name, topDir string, files map[string]string) string {
	e.t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)

	if err := tw.WriteHeader(&tar.Header{Name: topDir + "/", Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
		e.t.Fatalf("Failed to write tar header: %v", err)
	}
	for path, content := range files {
		hdr := &tar.Header{
			Name:     topDir + "/" + path,
			Typeflag: tar.TypeReg,
			Mode:     0o755,
			Size:     int64(len(content)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			e.t.Fatalf("Failed to write tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			e.t.Fatalf("Failed to write tar entry: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		e.t.Fatalf("Failed to close tar writer: %v", err)
	}
	if err := zw.Close(); err != nil {
		e.t.Fatalf("Failed to close gzip writer: %v", err)
	}

	return e.WriteFile(name, buf.String())
}

// FileExists checks if a file exists in the test environment.
func (e *Environment) FileExists(path string) bool {
	_, err := os.Stat(e.Path(path))
	return err == nil
}

// ReadFile reads a file from the test environment.
func (e *Environment) ReadFile(path string) string {
	e.t.Helper()

	content, err := os.ReadFile(e.Path(path))
	if err != nil {
		e.t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
