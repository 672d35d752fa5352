package envprobe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"

	"github.com/emberos/emberbuild/internal/execx"
)

// MinRustupVersion is the oldest manager known to carry the component
// and target subcommands the installer depends on.
const MinRustupVersion = "1.11.0"

// updateDelay gives the developer a window to interrupt before the
// manager mutates itself. Tests shorten it.
var updateDelay = 5 * time.Second

// EnsureRustup checks the installed manager version and self-updates
// when it is older than MinRustupVersion. The updated version is not
// re-verified afterwards; see DESIGN.md for the policy decision.
func EnsureRustup(r execx.Runner, rustup string) error {
	res, err := r.Run(execx.Command{Name: rustup, Args: []string{"--version"}})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("query %s version: exited %d", rustup, res.ExitCode)
	}
	installed, err := parseToolVersion(string(res.Stdout))
	if err != nil {
		return fmt.Errorf("query %s version: %w", rustup, err)
	}
	minimum, err := parseVersion(MinRustupVersion)
	if err != nil {
		return err
	}
	if compareVersions(installed, minimum) >= 0 {
		return nil
	}

	color.Warn.Printf("WARNING: %s is out of date (need at least %s)\n", rustup, MinRustupVersion)
	color.Warn.Printf("WARNING: running %s update in %v (interrupt to cancel)\n", rustup, updateDelay)
	time.Sleep(updateDelay)

	upd, err := r.Run(execx.Command{Name: rustup, Args: []string{"update"}})
	if err != nil {
		return err
	}
	if upd.ExitCode != 0 {
		return fmt.Errorf("%s update: exited %d", rustup, upd.ExitCode)
	}
	return nil
}

type version struct {
	major, minor, patch int
}

// parseToolVersion extracts the version from output shaped like
// "rustup 1.25.2 (17db695f1 2023-02-01)".
func parseToolVersion(out string) (version, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return version{}, fmt.Errorf("unrecognized version output %q", strings.TrimSpace(out))
	}
	return parseVersion(fields[1])
}

// parseVersion splits major.minor.patch, comparing each part as a
// number. Lexical comparison would order 1.9.0 after 1.11.0.
func parseVersion(s string) (version, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 3)
	if len(parts) != 3 {
		return version{}, fmt.Errorf("malformed version %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		// Tolerate trailing qualifiers like "3-beta".
		if i == 2 {
			if idx := strings.IndexAny(p, "-+"); idx >= 0 {
				p = p[:idx]
			}
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return version{}, fmt.Errorf("malformed version %q: %w", s, err)
		}
		nums[i] = n
	}
	return version{major: nums[0], minor: nums[1], patch: nums[2]}, nil
}

func compareVersions(a, b version) int {
	if a.major != b.major {
		return a.major - b.major
	}
	if a.minor != b.minor {
		return a.minor - b.minor
	}
	return a.patch - b.patch
}
