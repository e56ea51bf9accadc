package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hubconn/internal/loader"
	"github.com/ppiankov/hubconn/pkg/config"
)

type snapshotLister interface {
	Snapshots(ctx context.Context) ([]string, error)
}

// NewSnapshotsCmd creates the snapshots command
func NewSnapshotsCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List schedule snapshots stored in ClickHouse",
		Long: `List the snapshot names in the ClickHouse schedule table, in the ch: form
accepted by analyze, compare and flights.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := prepareConfig(cmd, cfg, rf); err != nil {
				return err
			}
			if strings.TrimSpace(cfg.ClickHouseDSN) == "" {
				return fmt.Errorf("--clickhouse-dsn is required (or clickhouse_dsn in the config file)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := loader.NewClickHouseSource(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = source.Close()
			}()

			return listSnapshots(cmd.Context(), cmd.OutOrStdout(), source)
		},
	}

	bindSourceFlags(cmd, cfg, rf)

	return cmd
}

func listSnapshots(ctx context.Context, out io.Writer, lister snapshotLister) error {
	names, err := lister.Snapshots(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(out, "No snapshots found.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, loader.ClickHousePrefix+name)
	}
	return nil
}
