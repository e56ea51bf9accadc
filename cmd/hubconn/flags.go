package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hubconn/internal/analyzer"
	"github.com/ppiankov/hubconn/internal/app"
	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/internal/pipeline"
	"github.com/ppiankov/hubconn/internal/reporter"
	"github.com/ppiankov/hubconn/internal/store"
	"github.com/ppiankov/hubconn/pkg/config"
)

// runFlags holds flag values that need parsing before they reach Config.
type runFlags struct {
	configPath string
	cacheTTL   string
	timeout    string
	noCache    bool
}

// bindSourceFlags registers the config file and ClickHouse source flags.
func bindSourceFlags(cmd *cobra.Command, cfg *config.Config, rf *runFlags) {
	cmd.Flags().StringVar(&rf.configPath, "config", "", "Path to config file (default: ./.hubconn.yaml, then ~/.hubconn.yaml)")
	cmd.Flags().StringVar(&cfg.ClickHouseDSN, "clickhouse-dsn", "", "ClickHouse DSN for ch: sources")
	cmd.Flags().StringVar(&cfg.ClickHouseTable, "clickhouse-table", cfg.ClickHouseTable, "ClickHouse table holding schedule snapshots")
	cmd.Flags().StringVar(&rf.timeout, "timeout", "2m", "ClickHouse query timeout (e.g., 30s, 2m)")
}

// bindCommonFlags registers the flags shared by analyze, compare and flights.
func bindCommonFlags(cmd *cobra.Command, cfg *config.Config, rf *runFlags) {
	bindSourceFlags(cmd, cfg, rf)

	// Load flags
	cmd.Flags().StringVar(&cfg.InboundLabel, "inbound-label", cfg.InboundLabel, "Direction cell value marking arrivals at the hub (default: \"To <hub>\")")
	cmd.Flags().StringVar(&cfg.OutboundLabel, "outbound-label", cfg.OutboundLabel, "Direction cell value marking departures from the hub (default: \"From <hub>\")")
	cmd.Flags().StringSliceVar(&cfg.ExcludeCarriers, "exclude-carrier", nil, "Carrier patterns to drop at load (repeatable, globs allowed)")
	cmd.Flags().StringSliceVar(&cfg.ExcludeAirports, "exclude-airport", nil, "Airport patterns to drop at load (repeatable, globs allowed)")

	// Output flags
	cmd.Flags().StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "Output directory")
	cmd.Flags().StringVar(&cfg.Format, "format", cfg.Format, "Output format (json, text, csv)")

	// Cache flags
	cmd.Flags().BoolVar(&rf.noCache, "no-cache", false, "Disable the result cache")
	cmd.Flags().StringVar(&cfg.CachePath, "cache-path", "", "Result cache database (default: user cache dir)")
	cmd.Flags().StringVar(&rf.cacheTTL, "cache-ttl", "1d", "Result cache TTL (e.g., 12h, 7d)")
}

// bindAnalysisFlags registers hub, threshold and group flags.
func bindAnalysisFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&cfg.Hub, "hub", cfg.Hub, "Hub airport code")
	cmd.Flags().IntVar(&cfg.MinConnect, "min-connect", cfg.MinConnect, "Minimum connection time in minutes")
	cmd.Flags().IntVar(&cfg.MaxConnect, "max-connect", cfg.MaxConnect, "Maximum connection time in minutes")
	cmd.Flags().StringSliceVar(&cfg.GroupARoutes, "group-a-routes", nil, "Route tags of group A (required)")
	cmd.Flags().StringSliceVar(&cfg.GroupACarriers, "group-a-carriers", nil, "Carriers of group A (default: all carriers in the schedule)")
	cmd.Flags().StringSliceVar(&cfg.GroupBRoutes, "group-b-routes", nil, "Route tags of group B (required)")
	cmd.Flags().StringSliceVar(&cfg.GroupBCarriers, "group-b-carriers", nil, "Carriers of group B (default: all carriers in the schedule)")
}

// prepareConfig layers the config file under explicitly set flags and
// validates the result.
func prepareConfig(cmd *cobra.Command, cfg *config.Config, rf *runFlags) error {
	var (
		fileCfg *config.FileConfig
		path    string
		err     error
	)
	if strings.TrimSpace(rf.configPath) != "" {
		path = rf.configPath
		fileCfg, err = config.LoadFile(path)
	} else {
		fileCfg, path, err = config.AutoLoadFile()
	}
	if err != nil {
		return err
	}
	if fileCfg != nil {
		slog.Debug("config file loaded", slog.String("path", path))
		if err := fileCfg.ApplyTo(cfg, cmd.Flags().Changed); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("timeout") || fileCfg == nil || fileCfg.Timeout == "" {
		if cfg.QueryTimeout, err = config.ParseDuration(rf.timeout); err != nil {
			return fmt.Errorf("invalid --timeout duration: %w", err)
		}
	}
	hasCacheFlags := cmd.Flags().Lookup("cache-ttl") != nil
	if hasCacheFlags && (cmd.Flags().Changed("cache-ttl") || fileCfg == nil || fileCfg.CacheTTL == "") {
		if cfg.CacheTTL, err = config.ParseDuration(rf.cacheTTL); err != nil {
			return fmt.Errorf("invalid --cache-ttl duration: %w", err)
		}
	}

	if err := reporter.ValidateFormat(cfg.Format); err != nil {
		return fmt.Errorf("invalid --format value: %w", err)
	}

	cfg.CacheEnabled = !rf.noCache
	cfg.Verbose = verbose
	cfg.Normalize()
	return nil
}

// analyzerOptions builds analysis options from cfg. Groups without carriers
// select every carrier that appears in snaps.
func analyzerOptions(cfg *config.Config, snaps ...*models.Snapshot) analyzer.Options {
	var all []string
	seen := make(map[string]struct{})
	for _, snap := range snaps {
		for _, carrier := range snap.Carriers() {
			if _, ok := seen[carrier]; ok {
				continue
			}
			seen[carrier] = struct{}{}
			all = append(all, carrier)
		}
	}

	carriers := func(configured []string) []string {
		if len(configured) > 0 {
			return configured
		}
		return all
	}

	return analyzer.Options{
		Hub:        cfg.Hub,
		MinConnect: cfg.MinConnect,
		MaxConnect: cfg.MaxConnect,
		GroupA:     models.Group{Routes: cfg.GroupARoutes, Carriers: carriers(cfg.GroupACarriers)},
		GroupB:     models.Group{Routes: cfg.GroupBRoutes, Carriers: carriers(cfg.GroupBCarriers)},
	}
}

// newPipeline builds a pipeline, attaching the result cache when enabled. The
// returned cleanup func closes the cache and is never nil.
func newPipeline(ctx context.Context, cfg *config.Config, opts analyzer.Options) (*pipeline.Pipeline, func()) {
	options := []pipeline.Option{pipeline.WithVersion(version)}
	cleanup := func() {}

	if cache := openCache(ctx, cfg); cache != nil {
		options = append(options, pipeline.WithCache(cache))
		cleanup = func() {
			_ = cache.Close()
		}
	}

	return pipeline.New(opts, options...), cleanup
}

// openCache opens and prunes the result cache. Failures disable caching for
// the run instead of failing it.
func openCache(ctx context.Context, cfg *config.Config) *store.Store {
	if !cfg.CacheEnabled {
		return nil
	}

	path := cfg.CachePath
	if path == "" {
		var err error
		if path, err = app.DefaultCachePath(); err != nil {
			slog.Warn("result cache disabled", slog.String("error", err.Error()))
			return nil
		}
	}

	cache, err := store.Open(ctx, path, cfg.CacheTTL)
	if err != nil {
		slog.Warn("result cache disabled", slog.String("path", path), slog.String("error", err.Error()))
		return nil
	}

	if pruned, err := cache.Prune(ctx); err != nil {
		slog.Warn("cache prune failed", slog.String("error", err.Error()))
	} else if pruned > 0 {
		slog.Debug("cache pruned", slog.Int64("entries", pruned))
	}

	return cache
}

func printFirstRunHint(cmd *cobra.Command) {
	if !isFirstRun {
		return
	}
	cmd.Println("Tip: put hub, thresholds and groups in .hubconn.yaml to skip repeating flags.")
}
