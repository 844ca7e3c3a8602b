package main

import (
	"fmt"

	"github.com/4thel00z/embcompare/internal"
	"github.com/spf13/cobra"
)

func NewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an embedding from the registry",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]

	configPath, err := resolveConfigPath(cmd)
	if err != nil {
		return err
	}

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if _, err := cfg.Embedding(id); err != nil {
		return err
	}
	delete(cfg.Embeddings, id)

	if err := internal.SaveConfig(configPath, cfg); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
	return nil
}
