package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hubconn/internal/baseline"
	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/pkg/config"
)

// NewCompareCmd creates the compare command
func NewCompareCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "compare BEFORE AFTER",
		Short: "Diff the connections and flights of two schedule versions",
		Long: `Analyze two schedule versions with the same options and report lost,
new and retimed connections together with removed, added and retimed flights.

Use --baseline to acknowledge known regressions and --fail-on-lost to exit
with code 6 when unacknowledged ones remain.`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return prepareConfig(cmd, cfg, rf)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], args[1])
		},
	}

	bindCommonFlags(cmd, cfg, rf)
	bindAnalysisFlags(cmd, cfg)

	cmd.Flags().StringVar(&cfg.BaselinePath, "baseline", "", "Baseline file of acknowledged lost connections and removed flights")
	cmd.Flags().BoolVar(&cfg.UpdateBaseline, "update-baseline", false, "Write current findings to the baseline file (default: "+baseline.DefaultPath+")")
	cmd.Flags().BoolVar(&cfg.FailOnLost, "fail-on-lost", false, "Exit with code 6 when unacknowledged findings remain")

	return cmd
}

func runCompare(ctx context.Context, out io.Writer, cfg *config.Config, beforeSource, afterSource string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startTime := time.Now()

	before, err := loadSnapshot(ctx, out, cfg, beforeSource)
	if err != nil {
		return err
	}
	after, err := loadSnapshot(ctx, out, cfg, afterSource)
	if err != nil {
		return err
	}

	p, cleanup := newPipeline(ctx, cfg, analyzerOptions(cfg, before, after))
	defer cleanup()

	fmt.Fprintln(out, "🔍 Comparing schedules...")
	report, err := p.Compare(ctx, before, after)
	if err != nil {
		return fmt.Errorf("failed to compare schedules: %w", err)
	}
	printComparisonSummary(out, report)

	if err := applyBaseline(out, cfg, report); err != nil {
		return err
	}

	if err := writeReport(out, cfg, report); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n✅ Comparison complete in %s!\n", time.Since(startTime).Round(time.Millisecond))

	if cfg.FailOnLost {
		if count := baseline.CountFindings(report); count > 0 {
			return &FindingsError{Count: count}
		}
	}
	return nil
}

// applyBaseline writes or applies the baseline file. Updating records the
// current findings and suppresses nothing.
func applyBaseline(out io.Writer, cfg *config.Config, report *models.Report) error {
	path := cfg.BaselinePath
	if path == "" {
		if !cfg.UpdateBaseline {
			return nil
		}
		path = baseline.DefaultPath
	}

	if cfg.UpdateBaseline {
		set := baseline.Set{}
		fingerprints := baseline.CollectFingerprints(report)
		baseline.AddAll(set, fingerprints)
		if err := baseline.Save(path, set); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Baseline updated: %s (%d findings)\n", path, len(fingerprints))
		return nil
	}

	known, err := baseline.Load(path)
	if err != nil {
		return err
	}
	suppressed, remaining := baseline.SuppressKnown(report, known)
	fmt.Fprintf(out, "✓ Baseline suppressed %d known findings, %d remaining\n", suppressed, remaining)
	return nil
}

func printComparisonSummary(out io.Writer, report *models.Report) {
	if c := report.Comparison; c != nil {
		fmt.Fprintf(out, "✓ Connections: %d lost, %d new, %d common, %d retimed\n",
			c.Stats.Lost, c.Stats.New, c.Stats.Common, c.Stats.TimeChanged)
	}
	if f := report.Flights; f != nil {
		fmt.Fprintf(out, "✓ Flights: %d removed, %d added, %d common, %d retimed\n",
			f.Stats.Removed, f.Stats.Added, f.Stats.Common, f.Stats.TimeChanged)
	}
	if report.Metadata.Cached {
		fmt.Fprintln(out, "✓ Result served from cache")
	}
}
