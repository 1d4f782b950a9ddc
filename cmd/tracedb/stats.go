package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <snapshot-file>",
	Short: "Print a summary of a snapshot's zones, sources, and event count",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	l, err := loadListenerFromSnapshot(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sources:    %v\n", l.Sources())
	fmt.Fprintf(out, "zones:      %d\n", len(l.Zones()))
	fmt.Fprintf(out, "events:     %d\n", l.TotalEventCount())
	fmt.Fprintf(out, "flows:      %d\n", l.Flows().Count())
	if tb, ok := l.Timebase(); ok {
		fmt.Fprintf(out, "timebase:   %d\n", tb)
	}
	if first, ok := l.FirstEventTime(); ok {
		if last, ok2 := l.LastEventTime(); ok2 {
			fmt.Fprintf(out, "time range: [%d, %d]\n", first, last)
		}
	}
	for _, z := range l.Zones() {
		zi, ok := l.ZoneIndex(z.ID)
		if !ok {
			continue
		}
		fmt.Fprintf(out, "  zone %-16s events=%-6d roots=%d\n", z.Name, len(zi.Events()), len(zi.GetRootScopes()))
	}
	return nil
}
