package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boards.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validManifest = `boards:
  - name: hail
    target: thumbv7em-none-eabi
    toolchain: llvm
    linker_script: boards/hail/layout.ld
    tools:
      objdump: /opt/llvm/bin/llvm-objdump
  - name: hifive1
    target: riscv32imc-unknown-none-elf
    toolchain: riscv64-unknown-elf
`

func TestLoad_Valid(t *testing.T) {
	m, err := Load(writeManifest(t, validManifest))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Boards) != 2 {
		t.Fatalf("boards = %d, want 2", len(m.Boards))
	}

	hail, ok := m.Find("hail")
	if !ok {
		t.Fatal("hail not found")
	}
	if hail.Target != "thumbv7em-none-eabi" {
		t.Errorf("target = %q", hail.Target)
	}
	if hail.Tools.Objdump != "/opt/llvm/bin/llvm-objdump" {
		t.Errorf("objdump override = %q", hail.Tools.Objdump)
	}
	if hail.LinkerScript != "boards/hail/layout.ld" {
		t.Errorf("linker script = %q", hail.LinkerScript)
	}
}

func TestLoad_MissingTargetRejected(t *testing.T) {
	_, err := Load(writeManifest(t, "boards:\n  - name: hail\n"))
	if err == nil {
		t.Fatal("expected schema violation for missing target")
	}
	if !strings.Contains(err.Error(), "invalid manifest") {
		t.Errorf("error = %v", err)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	_, err := Load(writeManifest(t, `boards:
  - name: hail
    target: thumbv7em-none-eabi
    flavor: crunchy
`))
	if err == nil {
		t.Fatal("expected schema violation for unknown key")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestFind_Unknown(t *testing.T) {
	m, err := Load(writeManifest(t, validManifest))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Find("imix"); ok {
		t.Error("unexpected board match")
	}
}
