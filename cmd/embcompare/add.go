package main

import (
	"fmt"

	"github.com/4thel00z/embcompare/internal"
	"github.com/spf13/cobra"
)

func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <id> <path>",
		Short: "Register an embedding",
		Long:  `Register an embedding file in the registry so it can be compared by id.`,
		Args:  cobra.ExactArgs(2),
		RunE:  runAdd,
	}

	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("format", "", "Embedding format (json|yaml|txt, default: file extension)")
	cmd.Flags().String("frequencies", "", "Path to a key -> frequency table")
	cmd.Flags().String("frequencies-format", "", "Frequencies format (json|yaml)")
	cmd.Flags().String("labels", "", "Path to a key -> display label table")
	cmd.Flags().String("labels-format", "", "Labels format (json|yaml)")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	id, path := args[0], args[1]

	format, _ := cmd.Flags().GetString("format")
	if format == "" && internal.InferFormat(path) == "" {
		return fmt.Errorf("%w: cannot infer a format for %s, pass --format", internal.ErrUnknownFormat, path)
	}

	configPath, err := resolveConfigPath(cmd)
	if err != nil {
		return err
	}

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return err
	}

	info := internal.EmbeddingInfo{Path: path, Format: format}
	info.Name, _ = cmd.Flags().GetString("name")
	info.Frequencies, _ = cmd.Flags().GetString("frequencies")
	info.FrequenciesFormat, _ = cmd.Flags().GetString("frequencies-format")
	info.Labels, _ = cmd.Flags().GetString("labels")
	info.LabelsFormat, _ = cmd.Flags().GetString("labels-format")

	cfg.Embeddings[id] = info

	if err := internal.SaveConfig(configPath, cfg); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s -> %s\n", id, path)
	return nil
}
