package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "embcompare",
		Short:         "Compare two embedding spaces",
		Long:          `Quantify where two word or entity embeddings diverge: neighborhood overlap, nearest-neighbor distances and frequency-weighted similarity medians.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	rootCmd.AddCommand(
		NewAddCmd(),
		NewRemoveCmd(),
		NewListCmd(),
		NewCompareCmd(),
		NewReportCmd(),
		NewNeighborsCmd(),
	)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Path to the embeddings registry (default: user config dir)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}
