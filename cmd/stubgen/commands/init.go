package commands

import (
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/stubgen/config"
)

func newInitCmd() *cobra.Command {
	var (
		force    bool
		provider string
		targets  []string
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a sample stubgen.toml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			sample := config.Default()
			sample.Stub.Provider = provider
			sample.Stub.Targets = append(sample.Stub.Targets, targets...)
			if err := sample.Validate(); err != nil {
				return err
			}

			path := filepath.Join(dir, config.FileName)
			if err := config.WriteSample(path, sample, force); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Wrote %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().StringVarP(&provider, "provider", "p", config.DefaultProvider, "Unit provider: manifest or go")
	cmd.Flags().StringSliceVarP(&targets, "target", "t", nil, "Target unit paths to record")
	return cmd
}
