package mocks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/felixgeelhaar/qtforge/internal/ports"
)

func TestCommandRunner_AddResult(t *testing.T) {
	runner := NewCommandRunner()
	runner.AddResult("7z", []string{"i"}, ports.CommandResult{
		ExitCode: 0,
		Stdout:   "7-Zip 19.00",
	})

	result, err := runner.Run(context.Background(), ports.NewCommand("7z", "i"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stdout != "7-Zip 19.00" {
		t.Errorf("Stdout = %q, want %q", result.Stdout, "7-Zip 19.00")
	}
}

func TestCommandRunner_NotFound(t *testing.T) {
	runner := NewCommandRunner()

	_, err := runner.Run(context.Background(), ports.NewCommand("unknown", "command"))
	if err == nil {
		t.Error("Run() should return error for unregistered command")
	}
}

func TestCommandRunner_Default(t *testing.T) {
	runner := NewCommandRunner()
	runner.SetDefault(ports.CommandResult{ExitCode: 2})

	result, err := runner.Run(context.Background(), ports.NewCommand("nmake", "install"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", result.ExitCode)
	}
}

func TestCommandRunner_AddError(t *testing.T) {
	runner := NewCommandRunner()
	startErr := errors.New("exec: not started")
	runner.AddError("configure.bat", nil, startErr)

	_, err := runner.Run(context.Background(), ports.NewCommand("configure.bat"))
	if !errors.Is(err, startErr) {
		t.Errorf("Run() error = %v, want %v", err, startErr)
	}
}

func TestCommandRunner_RecordsCalls(t *testing.T) {
	runner := NewCommandRunner()
	runner.SetDefault(ports.CommandResult{})

	_, _ = runner.Run(context.Background(), ports.NewCommand("nmake").WithDir("/src/qt"))
	_, _ = runner.Run(context.Background(), ports.NewCommand("nmake", "install").WithEnv([]string{"A=1"}))

	calls := runner.Calls()
	if len(calls) != 2 {
		t.Fatalf("Calls() len = %d, want 2", len(calls))
	}
	if calls[0].Dir != "/src/qt" {
		t.Errorf("calls[0].Dir = %q, want /src/qt", calls[0].Dir)
	}
	if calls[1].String() != "nmake install" || calls[1].Env[0] != "A=1" {
		t.Errorf("calls[1] = %+v", calls[1])
	}
}

func TestCommandRunner_Reset(t *testing.T) {
	runner := NewCommandRunner()
	runner.AddResult("7z", []string{"i"}, ports.CommandResult{})
	_, _ = runner.Run(context.Background(), ports.NewCommand("7z", "i"))

	runner.Reset()

	if len(runner.Calls()) != 0 {
		t.Error("Reset() should clear all calls")
	}
	if _, err := runner.Run(context.Background(), ports.NewCommand("7z", "i")); err == nil {
		t.Error("Reset() should clear all results")
	}
}

func TestCommandRunner_ThreadSafety(t *testing.T) {
	runner := NewCommandRunner()
	runner.SetDefault(ports.CommandResult{})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, _ = runner.Run(context.Background(), ports.NewCommand("cmd", string(rune('a'+idx%26))))
			_ = runner.Calls()
		}(i)
	}

	wg.Wait()

	if calls := runner.Calls(); len(calls) != 100 {
		t.Errorf("Expected 100 calls, got %d", len(calls))
	}
}
