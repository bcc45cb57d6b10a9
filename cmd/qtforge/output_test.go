package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/qtforge/internal/app"
	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/domain/paths"
	"github.com/felixgeelhaar/qtforge/internal/domain/pipeline"
	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestPrintOutcome_Success(t *testing.T) {
	t.Parallel()

	out := pipeline.Outcome{
		State:   stage.Configured,
		Message: "pipeline reached configured",
		Paths:   paths.Resolved{InstallPath: "/opt/qt"},
		Results: []stage.Result{
			stage.Succeeded(stage.SourcesValidated),
			stage.Succeeded(stage.Unpacked),
		},
	}

	var buf bytes.Buffer
	printOutcome(&buf, out)
	s := buf.String()
	assert.Contains(t, s, "✓ sources_validated")
	assert.Contains(t, s, "✓ unpacked")
	assert.Contains(t, s, "pipeline reached configured")
	assert.Contains(t, s, "install path: /opt/qt")
}

func TestPrintOutcome_Failure(t *testing.T) {
	t.Parallel()

	err := stage.New(stage.KindSdkNotFound, "Windows SDK not found")
	out := pipeline.Outcome{
		State:     stage.Aborted,
		AbortedAt: stage.EnvironmentReady,
		Failed:    err,
		Results: []stage.Result{
			stage.Succeeded(stage.SourcesValidated),
			stage.Succeeded(stage.Unpacked),
			stage.Failed(stage.EnvironmentReady, err),
		},
	}

	var buf bytes.Buffer
	printOutcome(&buf, out)
	assert.Contains(t, buf.String(), "✗ environment_ready")
	assert.Contains(t, buf.String(), "aborted at environment_ready")
}

func TestPrintPlan(t *testing.T) {
	t.Parallel()

	plan := &app.Plan{
		Profile: platform.Windows(),
		Paths:   paths.Resolved{Archive: "/src/qt.7z", Destination: "/src/qt", InstallPath: "/opt/qt"},
		FlagSet: configure.FlagSet{Name: "qt5-msvc", Flags: []string{"-mp"}},
		Steps: []app.PlanStep{
			{Stage: stage.Unpacked, Command: "7z x -y /src/qt.7z -o/src/qt -r"},
			{Stage: stage.Configured, Command: "configure.bat -prefix /opt/qt -mp", Note: "in /src/qt"},
		},
	}

	var buf bytes.Buffer
	printPlan(&buf, plan)
	s := buf.String()
	assert.Contains(t, s, "Build plan for Windows/windows")
	assert.Contains(t, s, "1. unpacked")
	assert.Contains(t, s, "→ 7z x -y /src/qt.7z -o/src/qt -r")
	assert.Contains(t, s, "flag set:    qt5-msvc (1 flags)")
	assert.Contains(t, s, "in /src/qt")
}

func TestPrintReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printReport(&buf, app.Report{Checks: []app.Check{
		{Name: "platform", OK: true, Detail: "Windows/windows"},
		{Name: "sdk", Detail: `C:\sdk`, Suggestion: "install the SDK"},
	}})
	s := buf.String()
	assert.Contains(t, s, "✓ platform")
	assert.Contains(t, s, "✗ sdk")
	assert.Contains(t, s, "install the SDK")
	assert.Contains(t, s, "Found 1 issues: sdk")

	buf.Reset()
	printReport(&buf, app.Report{Checks: []app.Check{{Name: "platform", OK: true}}})
	assert.Contains(t, buf.String(), "No issues found")
}
