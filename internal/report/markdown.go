package report

import (
	"fmt"
	"os"
	"strings"
)

func BuildMarkdown(r Report) string {
	var b strings.Builder
	b.WriteString("# Kernel Build Report\n\n")
	b.WriteString(fmt.Sprintf("- Platform: **%s**\n", r.Platform))
	b.WriteString(fmt.Sprintf("- Target: `%s`\n", r.Target))
	b.WriteString(fmt.Sprintf("- Variant: `%s`\n", r.Variant))
	b.WriteString(fmt.Sprintf("- Version: `%s`\n", r.Version))
	b.WriteString(fmt.Sprintf("- Build ID: `%s`\n", r.BuildID))
	b.WriteString(fmt.Sprintf("- Generated: `%s`\n", r.GeneratedAt))
	if r.Stamp != "" {
		b.WriteString(fmt.Sprintf("- Stamp: `%s`\n", r.Stamp))
	}

	b.WriteString("\n## Flags\n\n```\n")
	b.WriteString(strings.Join(r.Flags, " "))
	b.WriteString("\n```\n")

	if len(r.Artifacts) > 0 {
		b.WriteString("\n## Artifacts\n\n")
		b.WriteString("| Path | Size | Digest |\n")
		b.WriteString("|---|---:|---|\n")
		for _, a := range r.Artifacts {
			b.WriteString(fmt.Sprintf("| %s | %d | `%s` |\n", a.Path, a.Size, a.Digest))
		}
	}
	return b.String()
}

func WriteMarkdown(path string, r Report) error {
	return os.WriteFile(path, []byte(BuildMarkdown(r)), 0o644)
}
