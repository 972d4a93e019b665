package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/xgen/internal/cli/ui"
	"github.com/conduit-lang/xgen/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand(opts *globalOptions) *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run generation when model files change",
		Long: `Run generation once, then watch the resolved source roots and run it
again whenever model files change. Changes are debounced (watch.debounce in
xgen.yml) and every run registers a fresh resource namespace.

A failing run is reported and watching continues.

Examples:
  xgen watch
  xgen watch -C services/orders --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, opts, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts *globalOptions, flags *generateFlags) error {
	s, err := openSession(cmd, opts, flags)
	if err != nil {
		return err
	}
	defer s.close()

	e, err := s.engine()
	if err != nil {
		return err
	}
	ctrl := s.controller(e)

	plan, err := ctrl.Configure(ctx, s.module, s.params)
	if err != nil {
		return s.wrap(err)
	}
	m, err := s.matcher()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	generate := func(changed []string) {
		if len(changed) > 0 {
			s.logger.Info("model files changed", zap.Int("files", len(changed)))
		}
		out, err := ctrl.Run(ctx, s.module, s.params)
		if err != nil {
			fmt.Fprint(w, ui.FailureMessage(err, nil, color.NoColor))
			return
		}
		ui.WriteSuccess(w, describeOutcome(out), color.NoColor)
	}

	generate(nil)

	watcher, err := watch.NewFileWatcher(watch.Options{
		Roots:    plan.Config.SourceRoots,
		Matcher:  m,
		Debounce: s.cfg.Watch.Debounce,
		Logger:   s.logger,
	}, func(changed []string) error {
		generate(changed)
		return nil
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		watcher.Stop()
		return err
	}

	fmt.Fprint(w, ui.Info(fmt.Sprintf("Watching %d source roots, press Ctrl+C to stop", len(plan.Config.SourceRoots)), color.NoColor))

	<-ctx.Done()
	if err := watcher.Stop(); err != nil {
		return fmt.Errorf("error stopping watcher: %w", err)
	}
	return nil
}
