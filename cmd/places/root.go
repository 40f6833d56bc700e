package main

import (
	"github.com/spf13/cobra"

	"places/internal/config"
)

func rootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "places",
		Short:        "Capture and browse favourite places",
		SilenceUsage: true,
	}
	root.AddCommand(
		initCommand(cfg),
		addCommand(cfg),
		listCommand(cfg),
		showCommand(cfg),
		previewCommand(cfg),
	)
	return root
}
