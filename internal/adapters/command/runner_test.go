package command

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/qtforge/internal/ports"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell utilities")
	}
}

func TestNewRealRunner(t *testing.T) {
	runner := NewRealRunner()
	if runner == nil {
		t.Error("NewRealRunner() should not return nil")
	}
}

func TestRealRunner_Run_Success(t *testing.T) {
	skipOnWindows(t)
	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), ports.NewCommand("echo", "hello"))
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "hello\n", result.Stdout)
}

func TestRealRunner_Run_NonZeroExitIsNotAnError(t *testing.T) {
	skipOnWindows(t)
	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), ports.NewCommand("sh", "-c", "echo broken >&2; exit 3"))
	require.NoError(t, err, "non-zero exit must be reported through ExitCode")
	assert.False(t, result.Success())
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "broken\n", result.Stderr)
}

func TestRealRunner_Run_NotFound(t *testing.T) {
	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), ports.NewCommand("nonexistent-command-12345"))
	assert.Error(t, err)
	assert.Equal(t, -1, result.ExitCode)
}

func TestRealRunner_Run_UsesEnvAndDir(t *testing.T) {
	skipOnWindows(t)
	runner := NewRealRunner()
	dir := t.TempDir()

	cmd := ports.NewCommand("sh", "-c", `printf '%s|' "$QMAKESPEC"; pwd`).
		WithEnv(append(os.Environ(), "QMAKESPEC=win32-msvc2010")).
		WithDir(dir)

	result, err := runner.Run(context.Background(), cmd)
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "win32-msvc2010|")
	assert.Contains(t, result.Stdout, filepath.Base(dir), "child must run in the requested directory")
}

func TestRealRunner_Run_StreamsOutput(t *testing.T) {
	skipOnWindows(t)
	var out, errOut bytes.Buffer
	runner := NewRealRunner(WithStreams(&out, &errOut))

	result, err := runner.Run(context.Background(), ports.NewCommand("sh", "-c", "echo progress; echo warn >&2"))
	require.NoError(t, err)
	assert.Equal(t, "progress\n", out.String())
	assert.Equal(t, "warn\n", errOut.String())
	assert.Equal(t, "progress\n", result.Stdout, "streamed output is still captured")
}

func TestRealRunner_Run_CapturesOnlyTail(t *testing.T) {
	skipOnWindows(t)
	var out bytes.Buffer
	runner := NewRealRunner(WithStreams(&out, io.Discard), WithCaptureLimit(16))

	result, err := runner.Run(context.Background(), ports.NewCommand("sh", "-c", "for i in 1 2 3 4 5 6 7 8 9; do echo line-$i; done"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "line-1\n", "streamed output is complete")
	assert.Contains(t, out.String(), "line-9\n")
	assert.LessOrEqual(t, len(result.Stdout), 16)
	assert.True(t, strings.HasSuffix(result.Stdout, "line-9\n"), "captured %q", result.Stdout)
	assert.NotContains(t, result.Stdout, "line-1\n")
}

func TestTailBuffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		limit  int
		writes []string
		want   string
	}{
		{"under limit", 8, []string{"abc", "de"}, "abcde"},
		{"exact limit", 5, []string{"abc", "de"}, "abcde"},
		{"spills over", 4, []string{"abc", "def"}, "cdef"},
		{"single large write", 3, []string{"abcdefg"}, "efg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := newTailBuffer(tt.limit)
			for _, w := range tt.writes {
				n, err := buf.Write([]byte(w))
				require.NoError(t, err)
				assert.Equal(t, len(w), n)
			}
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRealRunner_Run_ContextCancellation(t *testing.T) {
	skipOnWindows(t)
	runner := NewRealRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := runner.Run(ctx, ports.NewCommand("sleep", "10"))
	assert.Error(t, err, "Run() should return error for cancelled context")
}
