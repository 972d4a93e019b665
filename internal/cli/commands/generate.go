package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/xgen/internal/cli/ui"
	"github.com/conduit-lang/xgen/internal/engine"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand(opts *globalOptions) *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"g"},
		Short:   "Run the generation engine for a module",
		Long: `Prepare and run one generation invocation for the module.

The module hierarchy is registered in the resource namespace, the classpath
and source roots are resolved, the declared languages are translated and the
result is handed to the engine configured under engine.command.

Flags override the generate section of xgen.yml.

Examples:
  xgen generate
  xgen generate -C services/orders --debug
  xgen generate --fail-on-validation-error=false
  xgen generate --classpath lib/a.jar --classpath lib/b.jar`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *globalOptions, flags *generateFlags) error {
	s, err := openSession(cmd, opts, flags)
	if err != nil {
		return err
	}
	defer s.close()

	// a skipped run never reaches the engine, so it needs no engine.command
	var e engine.Engine
	if !s.params.Skip {
		if e, err = s.engine(); err != nil {
			return err
		}
	}

	out, err := s.controller(e).Run(cmd.Context(), s.module, s.params)
	if err != nil {
		return s.wrap(err)
	}

	w := cmd.OutOrStdout()
	if out.ValidationErrors {
		ui.WriteError(w, ui.ErrorOptions{
			Level:   ui.ErrorLevelWarning,
			Problem: "The engine reported validation errors; continuing because fail_on_validation_error is disabled.",
			NoColor: color.NoColor,
		})
	}
	ui.WriteSuccess(w, describeOutcome(out), color.NoColor)
	return nil
}
