package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/xgen/internal/builderrors"
	"github.com/conduit-lang/xgen/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	dir       string
	debug     bool
	noColor   bool
	logFormat string
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "xgen",
		Short: "Incremental DSL code generation for multi-module projects",
		Long: color.CyanString(`xgen - incremental code generation driver

xgen prepares a generation run for a module: it registers the module
hierarchy in a resource namespace, resolves the classpath and source roots,
translates the declared languages and hands everything to the generation
engine. Validation errors found by the engine fail the build unless
generate.fail_on_validation_error is disabled.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.dir, "dir", "C", ".", "Module directory")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: console or json (default from xgen.yml)")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewGenerateCommand(opts))
	rootCmd.AddCommand(NewPlanCommand(opts))
	rootCmd.AddCommand(NewWatchCommand(opts))
	rootCmd.AddCommand(NewInitCommand(opts))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the xgen version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			kv := ui.NewKeyValueTable(out, color.NoColor)
			kv.AddRow("xgen version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", goVer)
			kv.Render()
		},
	}
}

// failure is an error from a generation run, with suggestions for the
// user
type failure struct {
	err         error
	suggestions []string
}

func (f *failure) Error() string { return f.err.Error() }
func (f *failure) Unwrap() error { return f.err }

// Execute runs the root command and reports a returned error on stderr
func Execute() error {
	rootCmd := NewRootCommand()
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		if cmd == nil {
			cmd = rootCmd
		}
		var f *failure
		if errors.As(err, &f) || builderrors.IsBuildFailure(err) {
			var suggestions []string
			if f != nil {
				suggestions = f.suggestions
			}
			fmt.Fprint(cmd.ErrOrStderr(), ui.FailureMessage(err, suggestions, color.NoColor))
			return err
		}
		color.New(color.FgRed, color.Bold).Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
