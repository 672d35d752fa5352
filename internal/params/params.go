// Package params holds the required build parameters and the
// environment toggles recognized by the orchestrator.
package params

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// BuildParameters are the two values every build needs before any
// other stage may run. Both come from the environment (or a board
// manifest entry) and are immutable once loaded.
type BuildParameters struct {
	// Platform is the board/platform crate name, e.g. "hail".
	Platform string
	// Target is the architecture triple, e.g. "thumbv7em-none-eabi".
	Target string
}

// MissingParamError names exactly which required parameter is unset.
type MissingParamError struct {
	Name string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("required build parameter %s is not set", e.Name)
}

// Validate fails on the first missing parameter, before any external
// tool is invoked.
func (p BuildParameters) Validate() error {
	if p.Platform == "" {
		return &MissingParamError{Name: "PLATFORM"}
	}
	if p.Target == "" {
		return &MissingParamError{Name: "TARGET"}
	}
	return nil
}

// Environment is the full set of recognized knobs, loaded once per run.
type Environment struct {
	Params BuildParameters

	// CI enables treat-warnings-as-errors in the assembled flags.
	CI bool
	// Verbose (V=1) echoes commands and passes --verbose to cargo.
	Verbose bool

	// ToolchainFamily selects binutils naming; "llvm" auto-discovers
	// the compiler's own tool directory.
	ToolchainFamily string
	Cargo           string
	Rustup          string

	// Per-tool overrides; used verbatim when non-empty.
	SizeTool    string
	ObjcopyTool string
	ObjdumpTool string
}

// FromEnv reads the environment, loading a .env file first when one is
// present so local developer settings apply without exporting.
func FromEnv() Environment {
	_ = godotenv.Load()
	return Environment{
		Params: BuildParameters{
			Platform: os.Getenv("PLATFORM"),
			Target:   os.Getenv("TARGET"),
		},
		CI:              os.Getenv("CI") != "",
		Verbose:         os.Getenv("V") == "1",
		ToolchainFamily: getenvDefault("TOOLCHAIN", "llvm"),
		Cargo:           getenvDefault("CARGO", "cargo"),
		Rustup:          getenvDefault("RUSTUP", "rustup"),
		SizeTool:        os.Getenv("SIZE"),
		ObjcopyTool:     os.Getenv("OBJCOPY"),
		ObjdumpTool:     os.Getenv("OBJDUMP"),
	}
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
