// Package commands implements the stubgen command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
)

// NewRootCmd builds the stubgen command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "stubgen",
		Short: "Generate Python type stubs from unit metadata",
		Long: `stubgen - Python type stubs (.pyi) for the types exported by compiled units.

stubgen loads the target units, follows every type their exported API
references (across units, resolving dependencies from search paths) and
writes one stub module per namespace under the output directory.

Available commands:
  generate - Write stubs for the given units
  check    - Exit 1 when the stubs on disk are out of date
  watch    - Regenerate whenever a target unit changes
  init     - Write a sample stubgen.toml
  version  - Show build information

Examples:
  stubgen generate units/Acme.Widgets.yaml -o stubs
  stubgen generate --provider go ./pkg/widgets
  stubgen check units/*.yaml
  stubgen watch -v units/Acme.Widgets.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}

			jsonLogs := a.cfg.Log.JSON
			if cmd.Flags().Changed("json-logs") {
				jsonLogs = a.jsonLogs
			}
			verbosity := a.cfg.Log.Verbosity
			if cmd.Flags().Changed("verbose") {
				verbosity = a.verbosity
			}
			if err := logger.Initialize(jsonLogs, verbosity); err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			logger.Debugw("Configuration loaded",
				logger.FieldProvider, a.cfg.Stub.Provider,
				logger.FieldDir, a.cfg.Stub.Dest)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
	}

	flags := root.PersistentFlags()
	flags.CountVarP(&a.verbosity, "verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	flags.StringVar(&a.configPath, "config", "", "Config file (default: nearest stubgen.toml)")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "Emit logs as JSON")

	root.AddCommand(
		newGenerateCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newInitCmd(),
		newVersionCmd(),
	)
	return root
}
