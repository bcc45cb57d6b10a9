package compile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/qtforge/internal/adapters/logging"
	"github.com/felixgeelhaar/qtforge/internal/domain/configure"
	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/sdkenv"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/ports"
	"github.com/felixgeelhaar/qtforge/internal/testutil/mocks"
)

func TestBuilder_MakeTool(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	fs := mocks.NewFileSystem()
	nop := logging.NewNopLogger()

	assert.Equal(t, "nmake", NewBuilder(platform.Windows(), Options{}, fs, runner, nop).MakeTool())
	assert.Equal(t, "make", NewBuilder(platform.POSIX(), Options{}, fs, runner, nop).MakeTool())
	assert.Equal(t, "jom", NewBuilder(platform.Windows(), Options{MakeTool: "jom"}, fs, runner, nop).MakeTool())
}

func TestBuilder_Compose(t *testing.T) {
	t.Parallel()

	env := sdkenv.NewEnvironment(platform.Windows(), nil,
		[]ports.Command{ports.NewCommand(`C:\sdk\Bin\SetEnv.cmd`, "/Release", "/x64", "/win7")})
	b := NewBuilder(platform.Windows(), Options{Args: []string{"/NOLOGO"}}, mocks.NewFileSystem(), mocks.NewCommandRunner(), logging.NewNopLogger())

	cmds := b.Compose(`C:\src\qt`, env)
	require.Len(t, cmds, 2)
	assert.Equal(t, `cmd.exe /C call C:\sdk\Bin\SetEnv.cmd /Release /x64 /win7 && nmake /NOLOGO`, cmds[0].String())
	assert.Equal(t, `cmd.exe /C call C:\sdk\Bin\SetEnv.cmd /Release /x64 /win7 && nmake /NOLOGO install`, cmds[1].String())
	assert.Equal(t, `C:\src\qt`, cmds[1].Dir)
}

func TestBuilder_Run_LogOnly(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	fs := mocks.NewFileSystem()
	b := NewBuilder(platform.POSIX(), Options{}, fs, runner, logging.NewNopLogger())

	result := b.Run(context.Background(), "/src/qt", "/opt/qt", sdkenv.Environment{}, configure.ModeLogOnly)

	assert.True(t, result.Success())
	assert.Equal(t, stage.BuildCompleted, result.Stage())
	assert.Empty(t, runner.Calls())
	assert.False(t, fs.Exists("/opt/qt/bin/qt.conf"))
}

func TestBuilder_Run_Execute(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.SetDefault(ports.CommandResult{})
	fs := mocks.NewFileSystem()
	fs.AddDir("/opt/qt")
	b := NewBuilder(platform.POSIX(), Options{}, fs, runner, logging.NewNopLogger()).
		WithEnviron(func() []string { return []string{"PATH=/usr/bin"} })

	result := b.Run(context.Background(), "/src/qt", "/opt/qt", sdkenv.Environment{}, configure.ModeExecute)
	require.True(t, result.Success(), "%v", result.Err())

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "make", calls[0].String())
	assert.Equal(t, "make install", calls[1].String())
	assert.Equal(t, []string{"PATH=/usr/bin"}, calls[1].Env)

	data, err := fs.ReadFile("/opt/qt/bin/qt.conf")
	require.NoError(t, err)
	cfg, err := ini.Load(data)
	require.NoError(t, err)
	assert.Equal(t, "..", cfg.Section("Paths").Key("Prefix").String())
}

func TestBuilder_Run_QtConfUsesHostPaths(t *testing.T) {
	t.Parallel()

	install := filepath.Join(t.TempDir(), "qtinstall")
	runner := mocks.NewCommandRunner()
	runner.SetDefault(ports.CommandResult{})
	fs := mocks.NewFileSystem()
	fs.AddDir(install)
	b := NewBuilder(platform.Windows(), Options{}, fs, runner, logging.NewNopLogger())

	result := b.Run(context.Background(), filepath.Join("src", "qt"), install, sdkenv.Environment{}, configure.ModeExecute)
	require.True(t, result.Success(), "%v", result.Err())

	assert.True(t, fs.IsDir(filepath.Join(install, "bin")))
	data, err := fs.ReadFile(filepath.Join(install, "bin", "qt.conf"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Prefix")
}

func TestBuilder_Run_Failures(t *testing.T) {
	t.Parallel()

	t.Run("build fails", func(t *testing.T) {
		t.Parallel()
		runner := mocks.NewCommandRunner()
		runner.AddResult("make", nil, ports.CommandResult{ExitCode: 2})
		b := NewBuilder(platform.POSIX(), Options{}, mocks.NewFileSystem(), runner, logging.NewNopLogger())

		result := b.Run(context.Background(), "/src/qt", "/opt/qt", sdkenv.Environment{}, configure.ModeExecute)

		require.ErrorIs(t, result.Err(), stage.ErrBuildFailed)
		assert.Equal(t, 2, result.Err().ExitCode)
		assert.Len(t, runner.Calls(), 1, "install must not run after a failed build")
	})

	t.Run("install path missing", func(t *testing.T) {
		t.Parallel()
		runner := mocks.NewCommandRunner()
		runner.SetDefault(ports.CommandResult{})
		b := NewBuilder(platform.POSIX(), Options{}, mocks.NewFileSystem(), runner, logging.NewNopLogger())

		result := b.Run(context.Background(), "/src/qt", "/opt/qt", sdkenv.Environment{}, configure.ModeExecute)

		require.ErrorIs(t, result.Err(), stage.ErrBuildFailed)
		assert.Equal(t, "/opt/qt", result.Err().Path)
	})
}

func TestQtConf(t *testing.T) {
	t.Parallel()

	data, err := QtConf()
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Paths]")
	assert.Contains(t, string(data), "Prefix")
}
