package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"CycleWatch/internal/indicator"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compute and print current indicator values and risk levels",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.store.Close()

	results, err := a.calc.ComputeAll()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDICATOR\tVALUE\tRISK")
	for _, r := range results {
		if r.Insufficient {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, "insufficient data", r.Level)
			continue
		}
		fmt.Fprintf(w, "%s\t%.3f\t%s\n", r.Name, r.Value, r.Level)
	}
	w.Flush()

	fmt.Printf("\noverall: %s\n", indicator.Overall(results, a.overallThresholds()))
	return nil
}
