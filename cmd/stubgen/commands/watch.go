package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/stubgen"
	"github.com/teranos/stubgen/stubgen/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "watch [unit...]",
		Short: "Regenerate stubs whenever a target unit changes",
		Long: `Generate once, then watch the target units and run a fresh generation
after each change. Runs never overlap; failures are logged and watching
continues. Stop with Ctrl-C.

Examples:
  stubgen watch units/Acme.Widgets.yaml
  stubgen watch --provider go ./pkg/widgets`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, a.cfg); err != nil {
				return err
			}
			opts := sessionOptions(a.cfg, args)
			if len(opts.Targets) == 0 {
				return errors.WithHint(errors.New("no target units given"), "pass one or more unit paths")
			}

			out := cmd.OutOrStdout()
			run := func(ctx context.Context) error {
				report, err := stubgen.New(newProvider(a.cfg), rendererFactory(a.cfg), opts).Run()
				if err != nil {
					return err
				}
				printReport(out, report)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := run(ctx); err != nil {
				logger.Errorw("Initial generation failed", logger.FieldError, err)
			}

			w, err := watch.New(opts.Targets, watchExtensions(a.cfg), run)
			if err != nil {
				return err
			}
			if a.cfg.Watch.DebounceMS == 0 {
				logger.Warnw("Debounce disabled; every file event starts a run")
			}
			w.SetDebounce(time.Duration(a.cfg.Watch.DebounceMS) * time.Millisecond)
			w.Ignore(opts.Dest)

			logger.Infow("Watching for changes", logger.FieldCount, len(opts.Targets))
			return w.Run(ctx)
		},
	}
	flags.register(cmd)
	return cmd
}
