package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tracedb/internal/events"
	"tracedb/internal/ingest"
	"tracedb/internal/schema"
	"tracedb/internal/snapshot"
	"tracedb/internal/wireadapter"
)

func newReader(data []byte) io.Reader { return bytes.NewReader(data) }

var (
	ingestSnapshotOut   string
	ingestRebuildWindow int
	ingestUI            string
)

func init() {
	ingestCmd.Flags().StringVar(&ingestSnapshotOut, "snapshot-out", "", "write a msgpack snapshot of the resulting database to this path")
	ingestCmd.Flags().IntVar(&ingestRebuildWindow, "rebuild-window", 0, "override the scope-forest rebuild-window warning threshold (0 = config/default)")
	ingestCmd.Flags().StringVar(&ingestUI, "ui", "auto", "progress UI (auto|on|off)")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <wire-file>",
	Short: "Ingest a msgpack wire trace and optionally snapshot the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	mode, err := readUIMode(ingestUI)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	window := ingestRebuildWindow
	if window == 0 {
		window = cfg.Ingest.RebuildWindow
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	reg := schema.NewRegistry()
	bus := events.New()
	l := ingest.New(reg, bus)
	if window > 0 {
		l.SetDefaultRebuildWindow(window)
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	start := time.Now()
	if !quiet && shouldUseTUI(mode) {
		err = runIngestWithUI(l, data)
	} else {
		err = wireadapter.Run(l, newReader(data), nil)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	if showTimings {
		fmt.Fprintf(cmd.OutOrStdout(), "ingest time: %.3fms\n", float64(time.Since(start).Microseconds())/1000)
	}

	useColor := wantColor(cmd)
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	printDiagnostics(cmd.OutOrStdout(), l.Diagnostics(), useColor, maxDiagnostics)

	fmt.Fprintf(cmd.OutOrStdout(), "ingested %d events across %d zones\n", l.TotalEventCount(), len(l.Zones()))

	if ingestSnapshotOut != "" {
		p := snapshot.Export(l)
		if err := snapshot.WriteFile(ingestSnapshotOut, p); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s (checksum %s)\n", ingestSnapshotOut, snapshot.Checksum(p))
	}

	if l.Diagnostics().HasErrors() {
		cmd.SilenceUsage = true
		return fmt.Errorf("ingest completed with errors")
	}
	return nil
}

type ingestOutcome struct {
	err error
}

func runIngestWithUI(l *ingest.Listener, data []byte) error {
	frames := make(chan wireadapter.Frame, 256)
	outcomeCh := make(chan ingestOutcome, 1)

	go func() {
		err := wireadapter.Run(l, newReader(data), func(f wireadapter.Frame) { frames <- f })
		outcomeCh <- ingestOutcome{err: err}
		close(frames)
	}()

	model := newIngestProgressModel("ingesting", 0, frames)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return uiErr
	}
	return outcome.err
}
