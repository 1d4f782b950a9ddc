package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"tracedb/internal/events"
	"tracedb/internal/ingest"
	"tracedb/internal/model"
	"tracedb/internal/query"
	"tracedb/internal/schema"
	"tracedb/internal/snapshot"
)

var queryCmd = &cobra.Command{
	Use:   "query <snapshot-file> <expression>",
	Short: "Run a filter, regex, or tree-expression query against a snapshot",
	Args:  cobra.ExactArgs(2),
	RunE:  runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	l, err := loadListenerFromSnapshot(args[0])
	if err != nil {
		return err
	}

	res, err := query.Run(l, args[1])
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	useColor := wantColor(cmd)
	zoneNames := zoneNameIndex(l)

	switch res.Kind {
	case query.KindTree:
		printNodes(cmd.OutOrStdout(), res.Nodes, useColor)
	default:
		printResultItems(cmd.OutOrStdout(), res.Items, zoneNames, useColor)
	}

	if showTimings {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%.3fms\n", res.DurationMS)
	}
	return nil
}

func loadListenerFromSnapshot(path string) (*ingest.Listener, error) {
	p, err := snapshot.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	l := ingest.New(schema.NewRegistry(), events.New())
	if err := snapshot.Restore(l, p); err != nil {
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return l, nil
}

func zoneNameIndex(l *ingest.Listener) map[model.ZoneID]string {
	out := make(map[model.ZoneID]string)
	for _, z := range l.Zones() {
		out[z.ID] = z.Name
	}
	return out
}

func printResultItems(out io.Writer, items []query.ResultItem, zoneNames map[model.ZoneID]string, useColor bool) {
	if len(items) == 0 {
		fmt.Fprintln(out, "no matches")
		return
	}
	kindWidth, zoneWidth := 6, 8
	for _, it := range items {
		zoneWidth = max(zoneWidth, runewidth.StringWidth(zoneNames[zoneForItem(it)]))
	}
	for _, it := range items {
		kind := "event"
		if it.IsScope {
			kind = "scope"
		}
		kind = padRight(kind, kindWidth)
		if useColor {
			if it.IsScope {
				kind = color.New(color.FgGreen).Sprint(kind)
			} else {
				kind = color.New(color.FgCyan).Sprint(kind)
			}
		}
		zone := padRight(zoneNames[zoneForItem(it)], zoneWidth)
		name := resultName(it)
		fmt.Fprintf(out, "%s %s t=%-10d %s\n", kind, zone, it.Time(), name)
	}
}

func zoneForItem(it query.ResultItem) model.ZoneID {
	if it.IsScope {
		return it.Scope.Zone
	}
	return it.Event.Zone
}

func resultName(it query.ResultItem) string {
	if it.IsScope {
		return fmt.Sprintf("%s (children=%d)", it.Scope.Name, it.Scope.ChildCount())
	}
	return fmt.Sprintf("event#%d", it.Event.Type)
}

func printNodes(out io.Writer, nodes []query.Node, useColor bool) {
	if len(nodes) == 0 {
		fmt.Fprintln(out, "no matches")
		return
	}
	for _, n := range nodes {
		typ := n.NodeType().String()
		if useColor {
			typ = color.New(color.FgMagenta).Sprint(typ)
		}
		fmt.Fprintf(out, "%s %s pos=%d %s\n", typ, n.NodeName(), n.NodePosition(), n.NodeValue())
	}
}

func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
