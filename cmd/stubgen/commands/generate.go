package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/stubgen"
)

func newGenerateCmd(a *app) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate [unit...]",
		Short: "Write stubs for the given units",
		Long: `Write Python stubs for every type the target units export, plus every
type those reference, transitively.

Targets are unit manifests (.yaml, .yml, .toml, .json) for the manifest
provider or package directories for the go provider. Without arguments the
targets listed under stub.targets are used.

Examples:
  stubgen generate units/Acme.Widgets.yaml
  stubgen generate -o typings -s /opt/units units/*.yaml
  stubgen generate --only-targets units/Acme.Widgets.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.apply(cmd, a.cfg); err != nil {
				return err
			}

			report, err := stubgen.New(newProvider(a.cfg), rendererFactory(a.cfg), sessionOptions(a.cfg, args)).Run()
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
