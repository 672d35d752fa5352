package execx

import (
	"strings"
	"testing"
)

func TestExecRunner_CapturesStdout(t *testing.T) {
	r := ExecRunner{}
	res, err := r.Run(Command{Name: "sh", Args: []string{"-c", "echo hello"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", res.ExitCode)
	}
	if got := strings.TrimSpace(string(res.Stdout)); got != "hello" {
		t.Errorf("stdout = %q, want %q", got, "hello")
	}
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	r := ExecRunner{}
	res, err := r.Run(Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
}

func TestExecRunner_MissingToolIsAnError(t *testing.T) {
	r := ExecRunner{}
	_, err := r.Run(Command{Name: "definitely-not-a-real-tool-9f2c"})
	if err == nil {
		t.Fatal("expected launch error for missing tool")
	}
}

func TestFakeRunner_RecordsCalls(t *testing.T) {
	f := &FakeRunner{Stub: func(cmd Command) (Result, error) {
		return Result{Stdout: []byte("ok")}, nil
	}}
	res, err := f.Run(Command{Name: "git", Args: []string{"describe", "--tags"}})
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Stdout) != "ok" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	lines := f.CallLines()
	if len(lines) != 1 || lines[0] != "git describe --tags" {
		t.Errorf("calls = %v", lines)
	}
}

func TestCommandString_EnvNotIncluded(t *testing.T) {
	c := Command{Name: "cargo", Args: []string{"build"}, Env: []string{"RUSTFLAGS=-D warnings"}}
	if got := c.String(); got != "cargo build" {
		t.Errorf("String() = %q", got)
	}
}
