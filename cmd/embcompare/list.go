package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/embcompare/internal"
	"github.com/spf13/cobra"
)

func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered embeddings",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	configPath, err := resolveConfigPath(cmd)
	if err != nil {
		return err
	}

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		out := make([]map[string]any, 0, len(cfg.Embeddings))
		for _, id := range cfg.EmbeddingIDs() {
			info := cfg.Embeddings[id]
			out = append(out, map[string]any{
				"id":     id,
				"name":   info.Name,
				"path":   info.Path,
				"format": info.Format,
			})
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(cfg.Embeddings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No embeddings. Register one with `embcompare add`.")
		return nil
	}

	for _, id := range cfg.EmbeddingIDs() {
		info := cfg.Embeddings[id]
		if info.Name != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%s)\n", id, info.Name, info.Path)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", id, info.Path)
		}
	}
	return nil
}
