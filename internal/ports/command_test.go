package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandResult_Success(t *testing.T) {
	result := CommandResult{
		ExitCode: 0,
		Stdout:   "output",
		Stderr:   "",
	}

	if !result.Success() {
		t.Error("Success() should be true for exit code 0")
	}
}

func TestCommandResult_Failure(t *testing.T) {
	result := CommandResult{
		ExitCode: 2,
		Stdout:   "",
		Stderr:   "error",
	}

	if result.Success() {
		t.Error("Success() should be false for non-zero exit code")
	}
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{
			name: "plain tokens",
			cmd:  NewCommand("7z", "x", "-y", "/src/qt.7z", "-o/src/qt", "-r"),
			want: "7z x -y /src/qt.7z -o/src/qt -r",
		},
		{
			name: "token with spaces is quoted",
			cmd:  NewCommand("cmd.exe", "/C", `C:\Program Files\SDK\SetEnv.cmd`, "/Release"),
			want: `cmd.exe /C "C:\Program Files\SDK\SetEnv.cmd" /Release`,
		},
		{
			name: "empty argument",
			cmd:  NewCommand("configure", ""),
			want: `configure ""`,
		},
		{
			name: "embedded quote is escaped",
			cmd:  NewCommand("echo", `say "hi"`),
			want: `echo "say \"hi\""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestCommand_CopiesArguments(t *testing.T) {
	t.Parallel()

	args := []string{"x", "-y"}
	cmd := NewCommand("7z", args...)
	args[0] = "mutated"

	assert.Equal(t, []string{"7z", "x", "-y"}, cmd.Argv())
}

func TestCommand_WithEnvAndDir(t *testing.T) {
	t.Parallel()

	base := NewCommand("nmake")
	env := []string{"PATH=/bin"}
	withEnv := base.WithEnv(env).WithDir("/src/qt")
	env[0] = "PATH=/mutated"

	assert.Nil(t, base.Env)
	assert.Empty(t, base.Dir)
	assert.Equal(t, []string{"PATH=/bin"}, withEnv.Env)
	assert.Equal(t, "/src/qt", withEnv.Dir)
	assert.Equal(t, base.String(), withEnv.String())
}
