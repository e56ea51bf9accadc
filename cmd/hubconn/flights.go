package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hubconn/internal/analyzer"
	"github.com/ppiankov/hubconn/pkg/config"
)

// NewFlightsCmd creates the flights command
func NewFlightsCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "flights BEFORE AFTER",
		Short: "Diff two schedule versions by flight",
		Long: `List flights removed, added or retimed between two schedule versions.
Flights are matched by carrier, number, origin and destination; no hub or
group options are needed.`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return prepareConfig(cmd, cfg, rf)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlights(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], args[1])
		},
	}

	bindCommonFlags(cmd, cfg, rf)

	return cmd
}

func runFlights(ctx context.Context, out io.Writer, cfg *config.Config, beforeSource, afterSource string) error {
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

	p, cleanup := newPipeline(ctx, cfg, analyzer.Options{})
	defer cleanup()

	report, err := p.Flights(ctx, before, after)
	if err != nil {
		return fmt.Errorf("failed to diff flights: %w", err)
	}
	printComparisonSummary(out, report)

	if err := writeReport(out, cfg, report); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n✅ Flight diff complete in %s!\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}
