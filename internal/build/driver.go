package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emberos/emberbuild/internal/components"
	"github.com/emberos/emberbuild/internal/envprobe"
	"github.com/emberos/emberbuild/internal/execx"
	"github.com/emberos/emberbuild/internal/flags"
	"github.com/emberos/emberbuild/internal/hash"
	"github.com/emberos/emberbuild/internal/manifest"
	"github.com/emberos/emberbuild/internal/params"
	"github.com/emberos/emberbuild/internal/report"
	"github.com/emberos/emberbuild/internal/toolchain"
)

// Variant is a build configuration: optimized or diagnostics-friendly.
type Variant string

const (
	VariantRelease Variant = "release"
	VariantDebug   Variant = "debug"
)

// ToolError reports a failed external invocation. The tool's own
// stderr has already reached the user; this layer only carries the
// identity and status for exit-code propagation.
type ToolError struct {
	Tool string
	Code int
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
}

// Driver owns one invocation of the pipeline. Construct, then call
// exactly one of Build, Check, Doc, or Clean.
type Driver struct {
	Runner  execx.Runner
	Env     params.Environment
	WorkDir string
	// Board is the manifest entry for the platform; the zero value
	// means no manifest is in play. Environment values win over it.
	Board manifest.Board

	// DigestTool is the content-digest helper executable; DigestBuild
	// is issued once to produce it when its artifact is absent.
	DigestTool  string
	DigestBuild execx.Command

	// Stdout receives the size report and digest line. Defaults to
	// os.Stdout.
	Stdout io.Writer

	pipeline  Pipeline
	tools     toolchain.Config
	version   string
	rustflags []string
}

// State exposes the pipeline position, mainly for tests.
func (d *Driver) State() State { return d.pipeline.State() }

func (d *Driver) out() io.Writer {
	if d.Stdout != nil {
		return d.Stdout
	}
	return os.Stdout
}

// Target is the effective triple: environment first, then manifest.
func (d *Driver) Target() string {
	if d.Env.Params.Target != "" {
		return d.Env.Params.Target
	}
	return d.Board.Target
}

func (d *Driver) family() string {
	if d.Env.ToolchainFamily != "" && d.Env.ToolchainFamily != toolchain.FamilyLLVM {
		return d.Env.ToolchainFamily
	}
	if d.Board.Toolchain != "" {
		return d.Board.Toolchain
	}
	return d.Env.ToolchainFamily
}

func (d *Driver) overrides() toolchain.Overrides {
	ov := toolchain.Overrides{
		Size:    d.Board.Tools.Size,
		Objcopy: d.Board.Tools.Objcopy,
		Objdump: d.Board.Tools.Objdump,
	}
	if d.Env.SizeTool != "" {
		ov.Size = d.Env.SizeTool
	}
	if d.Env.ObjcopyTool != "" {
		ov.Objcopy = d.Env.ObjcopyTool
	}
	if d.Env.ObjdumpTool != "" {
		ov.Objdump = d.Env.ObjdumpTool
	}
	return ov
}

func (d *Driver) mergedParams() params.BuildParameters {
	return params.BuildParameters{
		Platform: d.Env.Params.Platform,
		Target:   d.Target(),
	}
}

// prepare runs stages 4.1-4.5: validation through flag assembly.
// No compile happens before every stage here has succeeded.
func (d *Driver) prepare() error {
	if err := d.mergedParams().Validate(); err != nil {
		d.pipeline.Abort()
		return err
	}
	if err := d.pipeline.Advance(ParametersOK); err != nil {
		return err
	}

	tools, err := toolchain.Resolve(d.Runner, "rustc", d.family(), d.overrides())
	if err != nil {
		d.pipeline.Abort()
		return err
	}
	d.tools = tools
	if err := d.pipeline.Advance(ToolchainResolved); err != nil {
		return err
	}

	d.version = envprobe.KernelVersion(d.Runner)
	if err := envprobe.EnsureRustup(d.Runner, d.Env.Rustup); err != nil {
		d.pipeline.Abort()
		return err
	}

	inst := components.Installer{Runner: d.Runner, Rustup: d.Env.Rustup}
	if err := inst.Ensure(d.Target()); err != nil {
		d.pipeline.Abort()
		return err
	}
	if err := d.pipeline.Advance(ComponentsReady); err != nil {
		return err
	}

	d.rustflags = flags.Rustflags(flags.Options{
		CI:           d.Env.CI,
		WorkDir:      d.WorkDir,
		LinkerScript: d.Board.LinkerScript,
	})
	return d.pipeline.Advance(FlagsAssembled)
}

// runTool executes a pipeline step and aborts the run on any non-zero
// status. The tool's stderr is its own diagnostic; nothing is wrapped.
func (d *Driver) runTool(cmd execx.Command) (execx.Result, error) {
	res, err := d.Runner.Run(cmd)
	if err != nil {
		d.pipeline.Abort()
		return res, err
	}
	if res.ExitCode != 0 {
		d.pipeline.Abort()
		return res, &ToolError{Tool: cmd.Name, Code: res.ExitCode}
	}
	return res, nil
}

func (d *Driver) cargoEnv() []string {
	return []string{
		"RUSTFLAGS=" + strings.Join(d.rustflags, " "),
		"KERNEL_VERSION=" + d.version,
	}
}

func (d *Driver) cargoArgs(subcommand string, v Variant) []string {
	args := []string{subcommand, "--package", d.Env.Params.Platform, "--target", d.Target()}
	if v == VariantRelease {
		args = append(args, "--release")
	}
	if d.Env.Verbose {
		args = append(args, "--verbose")
	} else {
		args = append(args, "--quiet")
	}
	return args
}

func (d *Driver) artifactDir(v Variant) string {
	return filepath.Join(d.WorkDir, "target", d.Target(), string(v))
}

// Build compiles one variant and post-processes the linked image:
// size report, raw binary extraction, content digest, and optionally
// a disassembly listing.
func (d *Driver) Build(v Variant, withListing bool) (*report.Report, error) {
	if err := d.prepare(); err != nil {
		return nil, err
	}

	if _, err := d.runTool(execx.Command{
		Name: d.Env.Cargo,
		Args: d.cargoArgs("build", v),
		Env:  d.cargoEnv(),
	}); err != nil {
		return nil, err
	}
	if err := d.pipeline.Advance(Linked); err != nil {
		return nil, err
	}

	dir := d.artifactDir(v)
	elf := filepath.Join(dir, d.Env.Params.Platform)
	bin := elf + ".bin"
	lst := elf + ".lst"

	sizeRes, err := d.runTool(execx.Command{Name: d.tools.Size, Args: []string{elf}})
	if err != nil {
		return nil, err
	}
	fmt.Fprint(d.out(), string(sizeRes.Stdout))

	if err := d.extractBinary(elf, bin); err != nil {
		return nil, err
	}
	if err := d.pipeline.Advance(BinaryExtracted); err != nil {
		return nil, err
	}

	digest, err := d.digestBinary(bin)
	if err != nil {
		return nil, err
	}
	if err := d.pipeline.Advance(DigestComputed); err != nil {
		return nil, err
	}

	if withListing {
		if err := d.disassemble(elf, lst); err != nil {
			return nil, err
		}
		if err := d.pipeline.Advance(Disassembled); err != nil {
			return nil, err
		}
	}

	rep := report.New(d.Env.Params.Platform, d.Target(), string(v), d.version, d.rustflags)
	d.recordArtifact(&rep, elf, "")
	d.recordArtifact(&rep, bin, digest)
	if withListing {
		d.recordArtifact(&rep, lst, "")
	}
	if err := rep.Seal(); err != nil {
		return nil, err
	}
	if err := report.WriteJSON(filepath.Join(dir, "build-report.json"), rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// recordArtifact adds one artifact if it exists on disk. A missing
// artifact is tolerated here: fake-toolchain runs produce no files,
// and the digest step has already failed the build when it matters.
func (d *Driver) recordArtifact(rep *report.Report, path, digest string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if digest == "" {
		if fd, _, err := hash.DigestFile(path); err == nil {
			digest = fd
		}
	}
	rel := path
	if r, err := filepath.Rel(d.WorkDir, path); err == nil {
		rel = filepath.ToSlash(r)
	}
	rep.AddArtifact(rel, info.Size(), digest)
}

// extractBinary strips executable-format framing from the linked
// image, leaving only loadable content. Skipped when the existing
// binary is newer than the image.
func (d *Driver) extractBinary(elf, bin string) error {
	if !rebuildNeeded(elf, bin) {
		return nil
	}
	_, err := d.runTool(execx.Command{
		Name: d.tools.Objcopy,
		Args: []string{"--output-target=binary", elf, bin},
	})
	return err
}

// digestBinary invokes the content-digest helper on the raw image,
// building the helper first if its artifact is absent. The digest is
// printed alongside the artifact and returned for the report.
func (d *Driver) digestBinary(bin string) (string, error) {
	if d.DigestTool != "" && !hash.FileExists(d.DigestTool) {
		if _, err := d.runTool(d.DigestBuild); err != nil {
			return "", err
		}
	}
	res, err := d.runTool(execx.Command{Name: d.DigestTool, Args: []string{bin}})
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(res.Stdout))
	fmt.Fprintln(d.out(), line)
	if fields := strings.Fields(line); len(fields) > 0 {
		return fields[0], nil
	}
	return "", nil
}

// disassemble writes a full source-interleaved listing of the linked
// image. Skipped when the existing listing is newer than the image.
func (d *Driver) disassemble(elf, lst string) error {
	if !rebuildNeeded(elf, lst) {
		return nil
	}
	res, err := d.runTool(execx.Command{
		Name: d.tools.Objdump,
		Args: append(flags.Objdump(d.Target()), elf),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(lst, res.Stdout, 0o644); err != nil {
		return fmt.Errorf("write listing %s: %w", lst, err)
	}
	return nil
}

// rebuildNeeded applies the usual dependency discipline: regenerate
// when the output is absent or older than its input.
func rebuildNeeded(src, dst string) bool {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return true
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return true
	}
	return srcInfo.ModTime().After(dstInfo.ModTime())
}

// Check type-checks without producing a binary, for fast feedback.
func (d *Driver) Check(v Variant) error {
	if err := d.prepare(); err != nil {
		return err
	}
	_, err := d.runTool(execx.Command{
		Name: d.Env.Cargo,
		Args: d.cargoArgs("check", v),
		Env:  d.cargoEnv(),
	})
	return err
}

// Doc generates documentation with the same flag environment.
func (d *Driver) Doc(v Variant) error {
	if err := d.prepare(); err != nil {
		return err
	}
	_, err := d.runTool(execx.Command{
		Name: d.Env.Cargo,
		Args: d.cargoArgs("doc", v),
		Env:  d.cargoEnv(),
	})
	return err
}

// Clean removes build outputs. Only parameter validation is required;
// deleting artifacts must not depend on a resolvable toolchain.
func (d *Driver) Clean() error {
	if err := d.mergedParams().Validate(); err != nil {
		return err
	}
	res, err := d.Runner.Run(execx.Command{Name: d.Env.Cargo, Args: []string{"clean"}})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &ToolError{Tool: d.Env.Cargo, Code: res.ExitCode}
	}
	return nil
}
