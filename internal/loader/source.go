package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/pkg/config"
)

// ClickHousePrefix marks a source argument as a ClickHouse snapshot name,
// e.g. "ch:S25-v3".
const ClickHousePrefix = "ch:"

// Open loads a snapshot from a CSV path or, with the ch: prefix, from the
// configured ClickHouse table.
func Open(ctx context.Context, spec string, cfg *config.Config) (*models.Snapshot, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("schedule source is empty")
	}

	name, ok := strings.CutPrefix(spec, ClickHousePrefix)
	if !ok {
		return LoadCSVFile(spec, cfg)
	}

	if strings.TrimSpace(cfg.ClickHouseDSN) == "" {
		return nil, fmt.Errorf("snapshot %q needs a ClickHouse DSN (--clickhouse-dsn or clickhouse_dsn)", name)
	}

	source, err := NewClickHouseSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = source.Close()
	}()

	return source.Load(ctx, name)
}
