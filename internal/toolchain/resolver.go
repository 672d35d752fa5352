// Package toolchain resolves the binutils used to post-process the
// linked kernel image: a size reporter, an object copier, and a
// disassembler.
//
// Two naming schemes exist. The distinguished "llvm" family locates
// the active compiler's own tool directory by querying it for its
// installation root and searching that tree for llvm-size (the marker
// tool); siblings are derived from where the marker lives. Any other
// family value is treated as a literal prefix, GNU binutils style:
// arm-none-eabi becomes arm-none-eabi-size and so on.
package toolchain

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/emberos/emberbuild/internal/execx"
)

// FamilyLLVM selects auto-discovery of the compiler's bundled tools.
const FamilyLLVM = "llvm"

const markerTool = "llvm-size"

// Config holds the three resolved tool invocation names. Resolved once
// per run and read everywhere after.
type Config struct {
	Family  string
	Size    string
	Objcopy string
	Objdump string
}

// Overrides are caller-supplied tool paths. A non-empty override is
// used verbatim, regardless of the family's derivation.
type Overrides struct {
	Size    string
	Objcopy string
	Objdump string
}

// Resolve produces the tool configuration for a family. The runner is
// only consulted in the llvm auto-discovery path.
func Resolve(r execx.Runner, rustc, family string, ov Overrides) (Config, error) {
	cfg := Config{Family: family}
	switch family {
	case FamilyLLVM:
		root, err := compilerSysroot(r, rustc)
		if err != nil {
			return Config{}, err
		}
		dir, err := findMarker(root)
		if err != nil {
			return Config{}, err
		}
		cfg.Size = filepath.Join(dir, "llvm-size")
		cfg.Objcopy = filepath.Join(dir, "llvm-objcopy")
		cfg.Objdump = filepath.Join(dir, "llvm-objdump")
	default:
		cfg.Size = family + "-size"
		cfg.Objcopy = family + "-objcopy"
		cfg.Objdump = family + "-objdump"
	}
	if ov.Size != "" {
		cfg.Size = ov.Size
	}
	if ov.Objcopy != "" {
		cfg.Objcopy = ov.Objcopy
	}
	if ov.Objdump != "" {
		cfg.Objdump = ov.Objdump
	}
	return cfg, nil
}

func compilerSysroot(r execx.Runner, rustc string) (string, error) {
	res, err := r.Run(execx.Command{Name: rustc, Args: []string{"--print", "sysroot"}})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("query compiler sysroot: %s exited %d", rustc, res.ExitCode)
	}
	root := strings.TrimSpace(string(res.Stdout))
	if root == "" {
		return "", fmt.Errorf("query compiler sysroot: %s printed nothing", rustc)
	}
	return root, nil
}

// findMarker walks the sysroot for the marker tool and returns its
// directory. The root is injectable by construction: tests point the
// fake compiler at a temporary tree.
func findMarker(root string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if found != "" {
			return fs.SkipAll
		}
		if !d.IsDir() && d.Name() == markerTool {
			found = filepath.Dir(path)
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search toolchain root %s: %w", root, err)
	}
	if found == "" {
		return "", fmt.Errorf("no %s under %s: is the llvm-tools component installed?", markerTool, root)
	}
	return found, nil
}
