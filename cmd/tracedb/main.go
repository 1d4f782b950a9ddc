package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tracedb/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tracedb",
	Short: "In-memory event-trace analysis database",
	Long:  `tracedb ingests batched trace events, reconstructs scope trees and flows, and answers filter and tree-expression queries over the result.`,
}

// main registers every subcommand and persistent flag, then executes the
// root command. The process exits with status 1 if execution returns an
// error.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveMetricsCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("timings", false, "show query/ingest timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 4096, "maximum number of diagnostics to print")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this path")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this path")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to this path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func wantColor(cmd *cobra.Command) bool {
	flag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	return flag == "on" || (flag == "auto" && isTerminal(os.Stdout))
}
