package main

// @title        Back-office API
// @version      1.0
// @description  Orders, SKU stock, catalog and admin users of the shop back office.
// @BasePath     /api

import (
	"os"

	"github.com/spf13/cobra"

	_ "backoffice/docs"
)

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "Back-office API for orders, stock and catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("BACKOFFICE_CONFIG"), "path to YAML config")
	root.AddCommand(newServeCmd(&configPath), newSeedCmd(&configPath))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
