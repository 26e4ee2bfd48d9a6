package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, products, SKUs and admins from a YAML fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Seed.Path
			}
			if file == "" {
				return fmt.Errorf("no fixture: pass --file or set seed.path")
			}
			ctx := cmd.Context()
			a, cleanup, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := a.seed(ctx, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d created, %d skipped\n", file, res.Created, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture path (defaults to seed.path)")
	return cmd
}
