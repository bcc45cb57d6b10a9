package sdkenv

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/qtforge/internal/adapters/logging"
	"github.com/felixgeelhaar/qtforge/internal/domain/platform"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/domain/target"
	"github.com/felixgeelhaar/qtforge/internal/ports"
	"github.com/felixgeelhaar/qtforge/internal/testutil/mocks"
)

func sdkFileSystem() *mocks.FileSystem {
	fs := mocks.NewFileSystem()
	fs.AddFile(DefaultSDKRoot+`\Bin\SetEnv.cmd`, "@echo off")
	fs.AddDir(DefaultSDKRoot)
	return fs
}

func TestBuild_Windows(t *testing.T) {
	t.Parallel()

	b := NewBuilder(sdkFileSystem(), Options{}, logging.NewNopLogger())
	env, err := b.Build(context.Background(), platform.Windows(), target.X64)
	require.NoError(t, err)

	vars := env.Variables()
	require.Len(t, vars, 3)
	assert.Equal(t, Var{Name: "WindowsSdkDir", Value: DefaultSDKRoot}, vars[0])
	assert.Equal(t, Var{Name: "PATH", Value: DefaultSDKRoot + `\Bin`, Prepend: true}, vars[1])
	assert.Equal(t, Var{Name: "QMAKESPEC", Value: "win32-msvc2010"}, vars[2])

	assert.Equal(t,
		`cmd.exe /C "C:\Program Files\Microsoft SDKs\Windows\v7.1\Bin\SetEnv.cmd" /Release /x64 /win7`,
		env.InitCommand().String())
}

func TestBuild_ArchitectureSwitch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arch    target.Arch
		want    string
		notWant string
	}{
		{target.X86, "/x86", "/x64"},
		{target.X64, "/x64", "/x86"},
	}

	b := NewBuilder(sdkFileSystem(), Options{}, logging.NewNopLogger())
	for _, tt := range tests {
		t.Run(tt.arch.String(), func(t *testing.T) {
			t.Parallel()
			env, err := b.Build(context.Background(), platform.Windows(), tt.arch)
			require.NoError(t, err)

			args := env.InitCommand().Args
			assert.Contains(t, args, tt.want)
			assert.NotContains(t, args, tt.notWant)
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fs      *mocks.FileSystem
		profile platform.Profile
		arch    target.Arch
		want    error
	}{
		{"unknown architecture", sdkFileSystem(), platform.Windows(), target.Arch("arm64"), stage.ErrUnsupportedArchitecture},
		{"sdk missing", mocks.NewFileSystem(), platform.Windows(), target.X64, stage.ErrSdkNotFound},
		{"posix", sdkFileSystem(), platform.POSIX(), target.X64, stage.ErrNotImplemented},
		{"unsupported", sdkFileSystem(), platform.New(platform.FamilyUnsupported, "plan9", "Plan9"), target.X64, stage.ErrPlatformUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewBuilder(tt.fs, Options{}, logging.NewNopLogger()).
				Build(context.Background(), tt.profile, tt.arch)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild_UnsupportedMessage(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder(mocks.NewFileSystem(), Options{}, logging.NewNopLogger()).
		Build(context.Background(), platform.New(platform.FamilyUnsupported, "plan9", "Plan9"), target.X64)
	assert.EqualError(t, err, "Compilation for Plan9 not implemented yet")
}

func TestBuild_CustomOptions(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddDir(`D:\SDK`)
	opts := Options{SDKRoot: `D:\SDK`, SetEnvScript: `bin\setenv.cmd`, CompilerSpec: "win32-msvc", Shell: `C:\Windows\System32\cmd.exe`}

	env, err := NewBuilder(fs, opts, logging.NewNopLogger()).Build(context.Background(), platform.Windows(), target.X86)
	require.NoError(t, err)

	assert.Equal(t, `C:\Windows\System32\cmd.exe /C D:\SDK\bin\setenv.cmd /Release /x86 /win7`, env.InitCommand().String())
	assert.Equal(t, "win32-msvc", env.Vars()["QMAKESPEC"])
}

func TestEnvironment_Apply(t *testing.T) {
	t.Parallel()

	env := NewEnvironment(platform.Windows(), []Var{
		{Name: "WindowsSdkDir", Value: `C:\sdk`},
		{Name: "PATH", Value: `C:\sdk\Bin`, Prepend: true},
		{Name: "QMAKESPEC", Value: "win32-msvc2010"},
	}, nil)

	base := []string{`Path=C:\Windows`, "QMAKESPEC=old", "HOME=C:\\Users\\qt"}
	got := env.Apply(base)

	assert.Equal(t, []string{
		`Path=C:\sdk\Bin;C:\Windows`,
		"QMAKESPEC=win32-msvc2010",
		`HOME=C:\Users\qt`,
		`WindowsSdkDir=C:\sdk`,
	}, got)
	assert.Equal(t, `Path=C:\Windows`, base[0], "base must not be modified")
}

func TestEnvironment_Apply_POSIXIsCaseSensitive(t *testing.T) {
	t.Parallel()

	env := NewEnvironment(platform.POSIX(), []Var{{Name: "PATH", Value: "/sdk/bin", Prepend: true}}, nil)
	got := env.Apply([]string{"Path=/ignored", "PATH=/usr/bin"})

	assert.Equal(t, []string{"Path=/ignored", "PATH=/sdk/bin:/usr/bin"}, got)
}

func TestEnvironment_Apply_PrependWithoutInherited(t *testing.T) {
	t.Parallel()

	env := NewEnvironment(platform.POSIX(), []Var{{Name: "PATH", Value: "/sdk/bin", Prepend: true}}, nil)
	assert.Equal(t, []string{"PATH=/sdk/bin"}, env.Apply(nil))
}

func TestEnvironment_Script(t *testing.T) {
	t.Parallel()

	vars := []Var{
		{Name: "WindowsSdkDir", Value: `C:\sdk`},
		{Name: "PATH", Value: `C:\sdk\Bin`, Prepend: true},
	}
	assert.Equal(t, []string{`set WindowsSdkDir=C:\sdk`, `set PATH=C:\sdk\Bin;%PATH%`},
		NewEnvironment(platform.Windows(), vars, nil).Script())

	assert.Equal(t, "export PATH=/sdk/bin:$PATH",
		strings.Join(NewEnvironment(platform.POSIX(), []Var{{Name: "PATH", Value: "/sdk/bin", Prepend: true}}, nil).Script(), ""))
}

func TestEnvironment_Wrap(t *testing.T) {
	t.Parallel()

	setEnv := ports.NewCommand(`C:\Program Files\sdk\Bin\SetEnv.cmd`, "/Release", "/x86", "/win7")
	env := NewEnvironment(platform.Windows(), nil, []ports.Command{setEnv})

	got := env.Wrap(ports.NewCommand("nmake", "install").WithDir(`C:\src\qt`))
	assert.Equal(t, `cmd.exe /C call "C:\Program Files\sdk\Bin\SetEnv.cmd" /Release /x86 /win7 && nmake install`, got.String())
	assert.Equal(t, `C:\src\qt`, got.Dir)

	plain := ports.NewCommand("make")
	assert.Equal(t, plain, NewEnvironment(platform.POSIX(), nil, nil).Wrap(plain))
}
