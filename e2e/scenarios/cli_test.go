//go:build e2e

package scenarios

import (
	"runtime"
	"testing"

	"github.com/felixgeelhaar/qtforge/e2e/framework"
)

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
}

func TestVersion_ShowsVersion(t *testing.T) {
	skipShort(t)

	framework.NewScenario(t).
		When("I run qtforge version", func(r *framework.Runner) *framework.Result {
			return r.Version()
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertSuccess(t, r)
		}).
		And("the output names the binary", func(t *testing.T, r *framework.Result) {
			framework.AssertStdoutContains(t, r, "qtforge")
		})
}

func TestFlags_FromConfigFile(t *testing.T) {
	skipShort(t)

	scenario := framework.NewScenario(t)
	var config string

	scenario.
		Given("a config with a flag file next to it", func(env *framework.Environment) {
			env.WriteFile("flags/custom.yaml", "name: custom\nversion: \"5.12\"\nflags: [-release, -opensource]\n")
			config = env.WriteConfig("feature_flags_file: flags/custom.yaml\n")
		}).
		When("I run qtforge flags", func(r *framework.Runner) *framework.Result {
			return r.Flags("--config", config)
		}).
		Then("the command succeeds", func(t *testing.T, r *framework.Result) {
			framework.AssertSuccess(t, r)
		}).
		And("the custom flags are printed", func(t *testing.T, r *framework.Result) {
			framework.AssertStdoutContains(t, r, "-release -opensource")
		})
}

func TestBuild_BuiltinExtractionOnPOSIX(t *testing.T) {
	skipShort(t)
	if runtime.GOOS == "windows" {
		t.Skip("POSIX hosts stop at the SDK environment")
	}

	scenario := framework.NewScenario(t)
	var archive string

	scenario.
		Given("a tar.gz source archive", func(env *framework.Environment) {
			archive = env.WriteSourceArchive("src/qt-5.12.2.tar.gz", "qt-5.12.2", map[string]string{
				"configure":  "#!/bin/sh\n",
				"README.txt": "Qt",
			})
		}).
		When("I run qtforge build with the builtin extractor", func(r *framework.Runner) *framework.Result {
			return r.Build(archive, "5.12.2", scenario.Environment().Path("install"), "--extractor", "builtin")
		}).
		Then("the sources are unpacked next to the archive", func(t *testing.T, r *framework.Result) {
			framework.AssertFileExists(t, scenario.Environment(), "src/qt-5.12.2.tar/qt-5.12.2/configure")
		}).
		And("the run stops because the SDK environment is not implemented", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 255)
			framework.AssertStderrContains(t, r, "not implemented yet")
		})
}

func TestBuild_MissingArchive(t *testing.T) {
	skipShort(t)

	scenario := framework.NewScenario(t)

	scenario.
		When("I build from an archive that does not exist", func(r *framework.Runner) *framework.Result {
			return r.Build(scenario.Environment().Path("missing.7z"), "5.12.2", scenario.Environment().Path("install"))
		}).
		Then("the command fails with exit code 1", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 1)
		}).
		And("the error names the archive", func(t *testing.T, r *framework.Result) {
			framework.AssertStderrContains(t, r, "source archive not found")
		}).
		And("nothing is installed", func(t *testing.T, r *framework.Result) {
			framework.AssertFileNotExists(t, scenario.Environment(), "install")
		})
}

func TestPlan_InvalidVersion(t *testing.T) {
	skipShort(t)

	scenario := framework.NewScenario(t)

	scenario.
		When("I plan with a two-part version", func(r *framework.Runner) *framework.Result {
			return r.Plan(scenario.Environment().Path("qt.7z"), "5.12", scenario.Environment().Path("install"))
		}).
		Then("the command fails", func(t *testing.T, r *framework.Result) {
			framework.AssertExitCode(t, r, 1)
			framework.AssertStderrContains(t, r, "invalid Qt version")
		})
}
