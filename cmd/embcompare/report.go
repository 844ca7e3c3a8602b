package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/embcompare/internal"
	"github.com/spf13/cobra"
)

func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Describe a single embedding",
		Long:  `Print nearest-neighbor distance statistics for one registered embedding.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}

	addParameterFlags(cmd)
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	params, err := paramsFromFlags(cmd)
	if err != nil {
		return err
	}

	svcs, err := openServices(cmd)
	if err != nil {
		return err
	}
	defer svcs.Close()

	out, err := svcs.reports.Report(cmd.Context(), internal.ReportInput{
		ID:     args[0],
		Params: params,
	})
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"id":                    out.ID,
			"keys":                  out.Keys,
			"neighbors":             out.Width,
			"median_mean_distance":  out.MedianMeanDistance,
			"median_first_distance": out.MedianFirstDistance,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d keys, %d neighbors per key\n\n", out.ID, out.Keys, out.Width)
	fmt.Fprintf(w, "median mean distance to neighbors:   %.2e\n", out.MedianMeanDistance)
	fmt.Fprintf(w, "median distance to nearest neighbor: %.2e\n", out.MedianFirstDistance)

	return nil
}
