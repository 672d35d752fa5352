package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/emberos/emberbuild/internal/build"
	"github.com/emberos/emberbuild/internal/execx"
	"github.com/emberos/emberbuild/internal/hash"
	"github.com/emberos/emberbuild/internal/manifest"
	"github.com/emberos/emberbuild/internal/params"
	"github.com/emberos/emberbuild/internal/report"
)

const exitConfigError = 2

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		var ce cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.err)
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "emberbuild",
		Short:         "Ember OS kernel build orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	var manifestPath string
	root.PersistentFlags().StringVar(&manifestPath, "manifest", manifest.DefaultPath, "board manifest path")

	root.AddCommand(newBuildCommand(&manifestPath, "release", build.VariantRelease, false,
		"Build the optimized kernel image", "all"))
	root.AddCommand(newBuildCommand(&manifestPath, "debug", build.VariantDebug, false,
		"Build the unoptimized kernel image"))
	root.AddCommand(newBuildCommand(&manifestPath, "lst", build.VariantRelease, true,
		"Build release and produce a disassembly listing"))
	root.AddCommand(newBuildCommand(&manifestPath, "debug-lst", build.VariantDebug, true,
		"Build debug and produce a disassembly listing"))
	root.AddCommand(newCheckCommand(&manifestPath))
	root.AddCommand(newDocCommand(&manifestPath))
	root.AddCommand(newCleanCommand(&manifestPath))
	root.AddCommand(newShowTargetCommand(&manifestPath))
	root.AddCommand(newReportCommand())
	return root
}

// newDriver assembles a Driver from the environment and the board
// manifest. The default manifest is optional; a path the user named
// explicitly must exist. Invalid manifests and missing parameters are
// configuration errors.
func newDriver(manifestPath string) (*build.Driver, error) {
	env := params.FromEnv()

	var board manifest.Board
	if hash.FileExists(manifestPath) {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, cliError{code: exitConfigError, err: err}
		}
		if b, ok := m.Find(env.Params.Platform); ok {
			board = b
		}
	} else if manifestPath != manifest.DefaultPath {
		return nil, cliError{code: exitConfigError, err: fmt.Errorf("load manifest %s: file does not exist", manifestPath)}
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	digestTool := filepath.Join(workDir, "tools", "sha256sum")
	return &build.Driver{
		Runner:     execx.ExecRunner{Echo: env.Verbose},
		Env:        env,
		WorkDir:    workDir,
		Board:      board,
		DigestTool: digestTool,
		DigestBuild: execx.Command{
			Name: "go",
			Args: []string{"build", "-o", digestTool, "./cmd/sha256sum"},
		},
	}, nil
}

// wrap translates pipeline failures into process exit codes: missing
// parameters exit 2, failed tools propagate their own status.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var me *params.MissingParamError
	if errors.As(err, &me) {
		return cliError{code: exitConfigError, err: err}
	}
	var te *build.ToolError
	if errors.As(err, &te) {
		return cliError{code: te.Code, err: err}
	}
	return err
}

func newBuildCommand(manifestPath *string, use string, v build.Variant, withListing bool, short string, aliases ...string) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := newDriver(*manifestPath)
			if err != nil {
				return err
			}
			rep, err := d.Build(v, withListing)
			if err != nil {
				return wrap(err)
			}
			color.Success.Printf("%s %s build complete (version %s)\n", rep.Platform, rep.Variant, rep.Version)
			return nil
		},
	}
}

func newCheckCommand(manifestPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Type-check the kernel without producing a binary",
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := newDriver(*manifestPath)
			if err != nil {
				return err
			}
			return wrap(d.Check(build.VariantDebug))
		},
	}
}

func newDocCommand(manifestPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doc",
		Short: "Generate kernel documentation",
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := newDriver(*manifestPath)
			if err != nil {
				return err
			}
			return wrap(d.Doc(build.VariantRelease))
		},
	}
}

func newCleanCommand(manifestPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove build outputs",
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := newDriver(*manifestPath)
			if err != nil {
				return err
			}
			return wrap(d.Clean())
		},
	}
}

func newShowTargetCommand(manifestPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show-target",
		Short: "Print the resolved target triple",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := newDriver(*manifestPath)
			if err != nil {
				return err
			}
			target := d.Target()
			if target == "" {
				return wrap(&params.MissingParamError{Name: "TARGET"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
}

func newReportCommand() *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a build report JSON as Markdown",
		RunE: func(_ *cobra.Command, _ []string) error {
			if inPath == "" || outPath == "" {
				return cliError{code: exitConfigError, err: fmt.Errorf("--in and --out are required")}
			}
			r, err := report.ReadJSON(inPath)
			if err != nil {
				return err
			}
			if err := report.WriteMarkdown(outPath, r); err != nil {
				return err
			}
			fmt.Println(outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "build report JSON input")
	cmd.Flags().StringVar(&outPath, "out", "", "markdown output path")
	return cmd
}
