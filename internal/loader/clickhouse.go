package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/pkg/config"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ClickHouseSource reads schedule snapshots from a ClickHouse table with the
// columns snapshot, season, ops, flt_no, orgn, dest, std, sta, direction, route.
type ClickHouseSource struct {
	conn  *sql.DB
	table string
	cfg   *config.Config
	retry retryPolicy
}

// NewClickHouseSource connects to cfg.ClickHouseDSN and verifies the connection.
func NewClickHouseSource(ctx context.Context, cfg *config.Config) (*ClickHouseSource, error) {
	if !tableNamePattern.MatchString(cfg.ClickHouseTable) {
		return nil, fmt.Errorf("invalid ClickHouse table name %q", cfg.ClickHouseTable)
	}

	opts, err := clickhouse.ParseDSN(cfg.ClickHouseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ClickHouse DSN: %w", err)
	}

	opts.MaxOpenConns = 4
	opts.MaxIdleConns = 2
	opts.ConnMaxLifetime = time.Hour
	opts.DialTimeout = 30 * time.Second
	opts.ReadTimeout = cfg.QueryTimeout

	// readonly users cannot change settings such as max_execution_time
	opts.Settings = nil

	conn := clickhouse.OpenDB(opts)
	source := &ClickHouseSource{
		conn:  conn,
		table: cfg.ClickHouseTable,
		cfg:   cfg,
		retry: defaultRetryPolicy(),
	}

	err = source.retry.do(ctx, "ping", func() error {
		return conn.PingContext(ctx)
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	slog.Debug("connected to ClickHouse", slog.String("addr", opts.Addr[0]))

	return source, nil
}

// Load fetches every leg of one snapshot. Rows come back in a fixed order so
// repeated loads of the same snapshot are identical.
func (s *ClickHouseSource) Load(ctx context.Context, snapshot string) (*models.Snapshot, error) {
	ctx, cancel := withTotalTimeoutContext(ctx, s.cfg.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT
			season,
			ops,
			flt_no,
			orgn,
			dest,
			std,
			sta,
			direction,
			route
		FROM %s
		WHERE snapshot = ?
		ORDER BY ops, flt_no, orgn, dest
	`, s.table)

	var snap *models.Snapshot
	err := s.retry.do(ctx, "load snapshot", func() error {
		rows, err := s.conn.QueryContext(ctx, query, snapshot)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()

		result, err := s.scanSnapshot(rows, snapshot)
		if err != nil {
			return err
		}
		snap = result
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %q from %s: %w", snapshot, s.table, err)
	}

	return snap, nil
}

func (s *ClickHouseSource) scanSnapshot(rows *sql.Rows, name string) (*models.Snapshot, error) {
	c := newCollector(s.cfg)
	rowNum := 0

	for rows.Next() {
		rowNum++
		var rec record
		var season sql.NullString
		err := rows.Scan(
			&season,
			&rec.Carrier,
			&rec.FlightNo,
			&rec.Origin,
			&rec.Dest,
			&rec.STD,
			&rec.STA,
			&rec.Direction,
			&rec.Route,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", rowNum, err)
		}
		rec.Season = season.String

		if err := c.add(rec); err != nil {
			slog.Debug("skipping schedule row",
				slog.String("snapshot", name),
				slog.Int("row", rowNum),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return c.snapshot(name), nil
}

// Snapshots lists the snapshot names stored in the table.
func (s *ClickHouseSource) Snapshots(ctx context.Context) ([]string, error) {
	ctx, cancel := withTotalTimeoutContext(ctx, s.cfg.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf("SELECT DISTINCT snapshot FROM %s ORDER BY snapshot", s.table)

	var names []string
	err := s.retry.do(ctx, "list snapshots", func() error {
		names = names[:0]
		rows, err := s.conn.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()

		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots in %s: %w", s.table, err)
	}
	return names, nil
}

// Close releases the connection pool.
func (s *ClickHouseSource) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
