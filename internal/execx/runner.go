// Package execx is the subprocess seam between the build pipeline and
// the external toolchain. Every compiler, binutils, rustup, and git
// invocation goes through a Runner so the pipeline can be exercised
// against recorded outputs instead of an installed toolchain.
package execx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command is a single external tool invocation.
type Command struct {
	Name string
	Args []string
	// Env holds extra KEY=VALUE entries appended to the current
	// process environment (e.g. RUSTFLAGS for cargo).
	Env []string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the captured outcome of a finished invocation.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes external commands. A non-zero exit code is reported
// through Result, not through the error; the error is reserved for
// failures to launch the process at all (tool not found).
type Runner interface {
	Run(cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec. Stderr is streamed to the
// terminal as it arrives, since the failing tool's own output is the
// primary diagnostic, and captured as well for the caller.
type ExecRunner struct {
	// Echo prints each command line before running it (V=1 mode).
	Echo bool
}

func (r ExecRunner) Run(cmd Command) (Result, error) {
	if r.Echo {
		fmt.Fprintln(os.Stderr, cmd.String())
	}
	c := exec.Command(cmd.Name, cmd.Args...)
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = io.MultiWriter(os.Stderr, &stderr)
	err := c.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			res.ExitCode = ee.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("run %s: %w", cmd.Name, err)
	}
	return res, nil
}

// FakeRunner records every command and answers from a scripted stub.
// Tests assign Stub; a nil Stub answers success with empty output.
type FakeRunner struct {
	Calls []Command
	Stub  func(cmd Command) (Result, error)
}

func (f *FakeRunner) Run(cmd Command) (Result, error) {
	f.Calls = append(f.Calls, cmd)
	if f.Stub == nil {
		return Result{}, nil
	}
	return f.Stub(cmd)
}

// CallLines renders recorded calls one per line, for test assertions.
func (f *FakeRunner) CallLines() []string {
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, c.String())
	}
	return out
}
