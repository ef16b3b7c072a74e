package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/stubgen"
)

// ErrStale is returned by check when the stubs on disk differ from a fresh
// generation.
var ErrStale = errors.New("stubs are out of date")

// ExitCode maps an error returned by the command tree to a process exit
// code: 2 when a unit could not be loaded or resolved, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsFatalLoadError(err):
		return 2
	default:
		return 1
	}
}

func newCheckCmd(a *app) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "check [unit...]",
		Short: "Check that generated stubs are up to date",
		Long: `Regenerate stubs into a temporary directory and compare them with the
output directory, which is left untouched.

Exit codes:
  0 - Stubs are up to date
  1 - Stubs are out of date (differences listed), or the check failed
  2 - A unit could not be loaded or resolved

Examples:
  stubgen check units/Acme.Widgets.yaml
  stubgen check -o typings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, a.cfg); err != nil {
				return err
			}

			result, err := stubgen.Check(newProvider(a.cfg), rendererFactory(a.cfg), sessionOptions(a.cfg, args))
			if err != nil {
				return err
			}
			printCheck(cmd.OutOrStdout(), a.cfg.Stub.Dest, result)
			if !result.UpToDate {
				return errors.WithHintf(ErrStale, "%d file(s) differ; run stubgen generate to update %s",
					len(result.Differences), a.cfg.Stub.Dest)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
