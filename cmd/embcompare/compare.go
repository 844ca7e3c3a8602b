package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/embcompare/internal"
	"github.com/spf13/cobra"
)

func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <first> <second>",
		Short: "Compare two embeddings",
		Long:  `Compare the neighborhood structure of two registered embeddings and print frequency-weighted similarity medians plus the least and most similar keys.`,
		Args:  cobra.ExactArgs(2),
		RunE:  runCompare,
	}

	addParameterFlags(cmd)
	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	params, err := paramsFromFlags(cmd)
	if err != nil {
		return err
	}

	svcs, err := openServices(cmd)
	if err != nil {
		return err
	}
	defer svcs.Close()

	out, err := svcs.comparisons.Compare(cmd.Context(), internal.CompareInput{
		FirstID:  args[0],
		SecondID: args[1],
		Params:   params,
	})
	if err != nil {
		return fmt.Errorf("compare: %w", err)
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
		return outputCompareJSON(cmd, out)
	}

	if out.Keys == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No comparable data: the embeddings share no keys.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s vs %s over %d common keys\n\n", out.FirstID, out.SecondID, out.Keys)
	fmt.Fprintf(w, "median similarity:         %.1f%%\n", out.MedianSimilarity*100)
	fmt.Fprintf(w, "median ordered similarity: %.1f%%\n", out.MedianOrderedSimilarity*100)

	fmt.Fprintln(w, "\nLeast similar keys:")
	for _, ks := range out.LeastSimilar {
		fmt.Fprintf(w, "  %.1f%%  %s\n", ks.Similarity*100, displayLabel(labels, ks.Key))
	}

	fmt.Fprintln(w, "\nMost similar keys:")
	for _, ks := range out.MostSimilar {
		fmt.Fprintf(w, "  %.1f%%  %s\n", ks.Similarity*100, displayLabel(labels, ks.Key))
	}

	return nil
}

func outputCompareJSON(cmd *cobra.Command, out *internal.CompareOutput) error {
	similarities := func(list []internal.KeySimilarity) []map[string]any {
		encoded := make([]map[string]any, 0, len(list))
		for _, ks := range list {
			encoded = append(encoded, map[string]any{
				"key":        ks.Key,
				"similarity": ks.Similarity,
			})
		}
		return encoded
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"first":                     out.FirstID,
		"second":                    out.SecondID,
		"keys":                      out.Keys,
		"median_similarity":         out.MedianSimilarity,
		"median_ordered_similarity": out.MedianOrderedSimilarity,
		"least_similar":             similarities(out.LeastSimilar),
		"most_similar":              similarities(out.MostSimilar),
	})
}
