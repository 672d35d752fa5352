package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emberos/emberbuild/internal/build"
	"github.com/emberos/emberbuild/internal/params"
	"github.com/emberos/emberbuild/internal/report"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestShowTarget_PrintsTriple(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PLATFORM", "hail")
	t.Setenv("TARGET", "thumbv7em-none-eabi")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"show-target"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "thumbv7em-none-eabi" {
		t.Errorf("output = %q", got)
	}
}

func TestShowTarget_MissingTargetIsConfigError(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PLATFORM", "hail")
	t.Setenv("TARGET", "")

	root := newRootCommand()
	root.SetArgs([]string{"show-target"})
	err := root.Execute()

	var ce cliError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %T %v, want cliError", err, err)
	}
	if ce.code != exitConfigError {
		t.Errorf("exit code = %d, want %d", ce.code, exitConfigError)
	}
	if !strings.Contains(ce.Error(), "TARGET") {
		t.Errorf("error must name the missing parameter: %v", ce)
	}
}

func TestShowTarget_ManifestFillsTarget(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "boards.yaml"), []byte(`boards:
  - name: hail
    target: thumbv7em-none-eabi
`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLATFORM", "hail")
	t.Setenv("TARGET", "")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"show-target"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "thumbv7em-none-eabi" {
		t.Errorf("output = %q", got)
	}
}

func TestNewDriver_InvalidManifestIsConfigError(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "boards.yaml"), []byte("boards:\n  - name: hail\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLATFORM", "hail")
	t.Setenv("TARGET", "thumbv7em-none-eabi")

	_, err := newDriver("boards.yaml")
	var ce cliError
	if !errors.As(err, &ce) || ce.code != exitConfigError {
		t.Fatalf("err = %v, want config error", err)
	}
}

func TestNewDriver_MissingExplicitManifestIsConfigError(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PLATFORM", "hail")
	t.Setenv("TARGET", "thumbv7em-none-eabi")

	// The default manifest may be absent, but a path named on the
	// command line must exist.
	_, err := newDriver("custom-boards.yaml")
	var ce cliError
	if !errors.As(err, &ce) || ce.code != exitConfigError {
		t.Fatalf("err = %v, want config error", err)
	}
	if !strings.Contains(ce.Error(), "custom-boards.yaml") {
		t.Errorf("error must name the manifest path: %v", ce)
	}

	if _, err := newDriver("boards.yaml"); err != nil {
		t.Errorf("absent default manifest rejected: %v", err)
	}
}

func TestWrap_ExitCodes(t *testing.T) {
	var ce cliError

	err := wrap(&params.MissingParamError{Name: "PLATFORM"})
	if !errors.As(err, &ce) || ce.code != exitConfigError {
		t.Errorf("missing param wrapped as %v", err)
	}

	err = wrap(&build.ToolError{Tool: "cargo", Code: 101})
	if !errors.As(err, &ce) || ce.code != 101 {
		t.Errorf("tool failure wrapped as %v", err)
	}

	plain := fmt.Errorf("plain")
	if wrap(plain) != plain {
		t.Error("plain errors must pass through")
	}
	if wrap(nil) != nil {
		t.Error("nil must pass through")
	}
}

func TestReportCommand_RendersMarkdown(t *testing.T) {
	dir := t.TempDir()
	r := report.New("hail", "thumbv7em-none-eabi", "release", "1.4+", []string{"-C", "linker=rust-lld"})
	r.AddArtifact("target/thumbv7em-none-eabi/release/hail.bin", 4096, "sha256:abc")
	inPath := filepath.Join(dir, "build-report.json")
	if err := report.WriteJSON(inPath, r); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "build-report.md")

	cmd := newReportCommand()
	cmd.SetArgs([]string{"--in", inPath, "--out", outPath})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "sha256:abc") {
		t.Errorf("markdown = %s", raw)
	}
}

func TestReportCommand_RequiresPaths(t *testing.T) {
	cmd := newReportCommand()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	var ce cliError
	if !errors.As(err, &ce) || ce.code != exitConfigError {
		t.Fatalf("err = %v, want config error", err)
	}
}
