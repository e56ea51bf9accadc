package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hubconn/internal/loader"
	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/internal/reporter"
	"github.com/ppiankov/hubconn/pkg/config"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "analyze SCHEDULE",
		Short: "Classify every connection through the hub in one schedule",
		Long: `Pair group A arrivals with group B departures at the hub (and the
reverse), classify each pair as Connected or Disconnect, and write a report.

SCHEDULE is a CSV file or ch:<snapshot> for a ClickHouse snapshot.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return prepareConfig(cmd, cfg, rf)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			printFirstRunHint(cmd)
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), cfg, args[0])
		},
	}

	bindCommonFlags(cmd, cfg, rf)
	bindAnalysisFlags(cmd, cfg)

	return cmd
}

// runAnalyze executes the analysis workflow
func runAnalyze(ctx context.Context, out io.Writer, cfg *config.Config, source string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	snap, err := loadSnapshot(ctx, out, cfg, source)
	if err != nil {
		return err
	}

	p, cleanup := newPipeline(ctx, cfg, analyzerOptions(cfg, snap))
	defer cleanup()

	fmt.Fprintln(out, "🔍 Matching connections...")
	report, err := p.Analyze(ctx, snap)
	if err != nil {
		return fmt.Errorf("failed to analyze schedule: %w", err)
	}
	printAnalysisSummary(out, report)

	if err := writeReport(out, cfg, report); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n✅ Analysis complete in %s!\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}

func loadSnapshot(ctx context.Context, out io.Writer, cfg *config.Config, source string) (*models.Snapshot, error) {
	fmt.Fprintf(out, "📂 Loading %s...\n", source)
	snap, err := loader.Open(ctx, source, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	fmt.Fprintf(out, "✓ Loaded %d legs (%d rows skipped)\n", len(snap.Legs), snap.Skipped)
	return snap, nil
}

func writeReport(out io.Writer, cfg *config.Config, report *models.Report) error {
	fmt.Fprintln(out, "📝 Writing report...")
	if err := reporter.New(cfg).Generate(report); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	fmt.Fprintf(out, "✓ Report written to: %s\n", cfg.OutputDir)
	return nil
}

func printAnalysisSummary(out io.Writer, report *models.Report) {
	if report.Summary == nil {
		return
	}
	for _, d := range report.Summary.ByDirection {
		fmt.Fprintf(out, "✓ %s: %d connected, %d disconnect\n", d.Direction, d.Connected, d.Disconnect)
	}
	if report.Metadata.Cached {
		fmt.Fprintln(out, "✓ Result served from cache")
	}
}
