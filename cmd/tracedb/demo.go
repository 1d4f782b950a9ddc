package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tracedb/internal/wireadapter"
)

var demoCmd = &cobra.Command{
	Use:   "demo <out-file>",
	Short: "Write a small multi-zone wire trace for experimenting with ingest/query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", args[0], err)
		}
		defer func() { _ = f.Close() }()
		if err := wireadapter.WriteDemo(f); err != nil {
			return fmt.Errorf("failed to write demo trace: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote demo trace to %s\n", args[0])
		return nil
	},
}
