// Package flags assembles the compiler/linker flag sequence and the
// disassembler flag set. Order is a visible contract: the linker reads
// the link-script flag before the flags that follow it, so assembly
// appends and never reorders.
package flags

import "strings"

// DefaultLinkerScript is the board memory-layout script referenced by
// every link.
const DefaultLinkerScript = "layout.ld"

// Options select the conditional parts of the flag sequence.
type Options struct {
	// CI appends treat-warnings-as-errors. CI must not silently accept
	// new warnings; interactive builds must not be blocked by them.
	CI bool
	// WorkDir is stripped from embedded debug paths so binaries do not
	// leak local filesystem layout and rebuild reproducibly.
	WorkDir string
	// LinkerScript overrides DefaultLinkerScript when non-empty.
	LinkerScript string
}

// Rustflags produces the ordered flag sequence for every compile and
// link in this run. Re-assembly with equal options yields an identical
// sequence.
func Rustflags(opts Options) []string {
	script := opts.LinkerScript
	if script == "" {
		script = DefaultLinkerScript
	}
	out := []string{
		"-C", "link-arg=-T" + script,
		"-C", "linker=rust-lld",
		"-C", "linker-flavor=ld.lld",
		"-C", "relocation-model=dynamic-no-pic",
		"-C", "link-arg=-zmax-page-size=512",
		"--remap-path-prefix=" + opts.WorkDir + "=",
	}
	if opts.CI {
		out = append(out, "-D", "warnings")
	}
	return out
}

// RustflagsString renders the sequence the way cargo expects it in the
// RUSTFLAGS environment variable.
func RustflagsString(opts Options) string {
	return strings.Join(Rustflags(opts), " ")
}

// Objdump produces the disassembly-listing flag set. Thumb-family
// triples get an explicit architecture hint: the disassembler cannot
// auto-detect intermixed thumb-mode code.
func Objdump(target string) []string {
	out := []string{"--disassemble-all", "--source", "--section-headers"}
	if strings.Contains(target, "thumb") {
		out = append(out, "--arch-name=thumb")
	}
	return out
}
