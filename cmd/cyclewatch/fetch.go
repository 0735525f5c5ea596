package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one incremental update cycle and print the per-metric report",
	RunE:  runFetch,
}

func runFetch(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.store.Close()

	report := a.updater.Run(cmd.Context())
	for _, s := range report.Statuses {
		fmt.Println(s)
	}
	fmt.Printf("run: %s\n", report.Summary())
	return nil
}
