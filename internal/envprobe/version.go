// Package envprobe inspects the developer environment before a build:
// it derives the kernel version tag from version control and gates on
// a minimum toolchain-manager version, self-updating when too old.
package envprobe

import (
	"strings"

	"github.com/emberos/emberbuild/internal/execx"
)

// FallbackVersion is embedded when version-control metadata is
// unavailable (tarball checkout, git missing).
const FallbackVersion = "1.4+"

// KernelVersion asks git for a tag-relative descriptor of the working
// tree. Any failure falls back to the fixed literal; the build must
// not depend on git being present.
func KernelVersion(r execx.Runner) string {
	res, err := r.Run(execx.Command{
		Name: "git",
		Args: []string{"describe", "--tags", "--always", "--dirty"},
	})
	if err != nil || res.ExitCode != 0 {
		return FallbackVersion
	}
	v := strings.TrimSpace(string(res.Stdout))
	if v == "" {
		return FallbackVersion
	}
	return v
}
