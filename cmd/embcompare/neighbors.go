package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/embcompare/internal"
	"github.com/spf13/cobra"
)

func NewNeighborsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbors <first> <second> <key>...",
		Short: "Contrast neighbor lists for specific keys",
		Long:  `Show which neighbors the two embeddings agree and disagree on for the given keys, the drill-down behind a low similarity score.`,
		Args:  cobra.MinimumNArgs(3),
		RunE:  runNeighbors,
	}

	addParameterFlags(cmd)
	return cmd
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	params, err := paramsFromFlags(cmd)
	if err != nil {
		return err
	}

	svcs, err := openServices(cmd)
	if err != nil {
		return err
	}
	defer svcs.Close()

	out, err := svcs.comparisons.Neighborhoods(cmd.Context(), internal.NeighborhoodsInput{
		FirstID:  args[0],
		SecondID: args[1],
		Keys:     args[2:],
		Params:   params,
	})
	if err != nil {
		return fmt.Errorf("neighbors: %w", err)
	}

	firstLabels, err := svcs.comparisons.Labels(out.FirstID)
	if err != nil {
		return err
	}
	secondLabels, err := svcs.comparisons.Labels(out.SecondID)
	if err != nil {
		return err
	}
	labels := mergeLabels(firstLabels, secondLabels)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return outputNeighborhoodsJSON(cmd, out)
	}

	if len(out.Keys) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "None of the requested keys exist in both embeddings.")
		return nil
	}

	w := cmd.OutOrStdout()
	for _, kn := range out.Keys {
		fmt.Fprintf(w, "%s (similarity %.0f%%)\n", displayLabel(labels, kn.Key), kn.Similarity*100)

		if len(kn.Common) > 0 {
			fmt.Fprintln(w, "  common neighbors:")
			for _, pair := range kn.Common {
				fmt.Fprintf(w, "    %-20s %.1f%%  %.1f%%\n",
					displayLabel(labels, pair.Key), pair.FirstSimilarity*100, pair.SecondSimilarity*100)
			}
		}

		// Distinct neighbors may exist in one vocabulary only, so each
		// side resolves through its own label table.
		if len(kn.FirstOnly) > 0 {
			fmt.Fprintf(w, "  only in %s:\n", out.FirstID)
			for _, n := range kn.FirstOnly {
				fmt.Fprintf(w, "    %-20s %.1f%%\n", displayLabel(firstLabels, n.Key), n.Similarity*100)
			}
		}
		if len(kn.SecondOnly) > 0 {
			fmt.Fprintf(w, "  only in %s:\n", out.SecondID)
			for _, n := range kn.SecondOnly {
				fmt.Fprintf(w, "    %-20s %.1f%%\n", displayLabel(secondLabels, n.Key), n.Similarity*100)
			}
		}

		fmt.Fprintln(w)
	}

	return nil
}

func outputNeighborhoodsJSON(cmd *cobra.Command, out *internal.NeighborhoodsOutput) error {
	neighbors := func(list []internal.Neighbor) []map[string]any {
		encoded := make([]map[string]any, 0, len(list))
		for _, n := range list {
			encoded = append(encoded, map[string]any{
				"key":        n.Key,
				"similarity": n.Similarity,
			})
		}
		return encoded
	}

	keys := make([]map[string]any, 0, len(out.Keys))
	for _, kn := range out.Keys {
		common := make([]map[string]any, 0, len(kn.Common))
		for _, pair := range kn.Common {
			common = append(common, map[string]any{
				"key":               pair.Key,
				"first_similarity":  pair.FirstSimilarity,
				"second_similarity": pair.SecondSimilarity,
			})
		}

		keys = append(keys, map[string]any{
			"key":         kn.Key,
			"similarity":  kn.Similarity,
			"common":      common,
			"first_only":  neighbors(kn.FirstOnly),
			"second_only": neighbors(kn.SecondOnly),
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"first":  out.FirstID,
		"second": out.SecondID,
		"keys":   keys,
	})
}
