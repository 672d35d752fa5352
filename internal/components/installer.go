// Package components ensures the compiler add-ons a kernel build needs
// are present before the first compile: llvm-tools (debug-info and
// binutils support), rust-src (standard-library sources), and the
// target architecture's support bundle. A missing add-on fails the
// compile itself with an opaque toolchain error, so this layer heals
// it up front instead.
package components

import (
	"fmt"
	"strings"

	"github.com/emberos/emberbuild/internal/execx"
)

const installedMarker = "(installed)"

// requiredComponents are ensured for every build, in this order.
var requiredComponents = []string{"llvm-tools", "rust-src"}

// Installer drives the toolchain manager's component and target
// subcommands. Idempotent: already-installed add-ons are left alone.
type Installer struct {
	Runner execx.Runner
	Rustup string
}

// Ensure installs whichever of the required components and the target
// support bundle are missing.
func (i Installer) Ensure(target string) error {
	for _, c := range requiredComponents {
		if err := i.ensure("component", c); err != nil {
			return err
		}
	}
	return i.ensure("target", target)
}

func (i Installer) ensure(kind, name string) error {
	installed, err := i.listed(kind, name)
	if err != nil {
		return err
	}
	if installed {
		return nil
	}
	res, err := i.Runner.Run(execx.Command{Name: i.Rustup, Args: []string{kind, "add", name}})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("install %s %s: %s exited %d", kind, name, i.Rustup, res.ExitCode)
	}
	return nil
}

// listed scans the manager's list output for a line naming the add-on
// with the installed marker, e.g. "rust-src (installed)". The name
// must match the whole first token: a prefix match would let an
// installed thumbv7em-none-eabihf stand in for thumbv7em-none-eabi.
func (i Installer) listed(kind, name string) (bool, error) {
	res, err := i.Runner.Run(execx.Command{Name: i.Rustup, Args: []string{kind, "list"}})
	if err != nil {
		return false, err
	}
	if res.ExitCode != 0 {
		return false, fmt.Errorf("list %ss: %s exited %d", kind, i.Rustup, res.ExitCode)
	}
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 1 && fields[0] == name && strings.Contains(line, installedMarker) {
			return true, nil
		}
	}
	return false, nil
}
