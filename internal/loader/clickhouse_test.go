package loader

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ppiankov/hubconn/pkg/config"
)

type queryCall struct {
	query string
	args  []driver.NamedValue
}

type mockState struct {
	mu             sync.Mutex
	pages          [][][]driver.Value
	columns        []string
	calls          []queryCall
	queryErrByCall map[int]error
}

type mockDriver struct {
	state *mockState
}

func (d *mockDriver) Open(name string) (driver.Conn, error) {
	return &mockConn{state: d.state}, nil
}

type mockConn struct {
	state *mockState
}

func (c *mockConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *mockConn) Close() error {
	return nil
}

func (c *mockConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *mockConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()

	copiedArgs := make([]driver.NamedValue, len(args))
	copy(copiedArgs, args)
	c.state.calls = append(c.state.calls, queryCall{query: query, args: copiedArgs})
	idx := len(c.state.calls) - 1

	if err, ok := c.state.queryErrByCall[idx]; ok {
		return nil, err
	}
	if idx >= len(c.state.pages) {
		return &mockRows{columns: c.state.columns}, nil
	}
	return &mockRows{columns: c.state.columns, values: c.state.pages[idx]}, nil
}

var _ driver.QueryerContext = (*mockConn)(nil)

var driverCounter uint64

func newMockDB(t *testing.T, state *mockState) *sql.DB {
	t.Helper()
	name := fmt.Sprintf("hubconn-mockdb-%d", atomic.AddUint64(&driverCounter, 1))
	sql.Register(name, &mockDriver{state: state})
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

type mockRows struct {
	columns []string
	values  [][]driver.Value
	idx     int
}

func (r *mockRows) Columns() []string {
	return r.columns
}

func (r *mockRows) Close() error {
	return nil
}

func (r *mockRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.values) {
		return io.EOF
	}
	copy(dest, r.values[r.idx])
	r.idx++
	return nil
}

var scheduleColumns = []string{"season", "ops", "flt_no", "orgn", "dest", "std", "sta", "direction", "route"}

func scheduleRow(season any, carrier, number, origin, dest, std, sta, direction, route string) []driver.Value {
	return []driver.Value{season, carrier, number, origin, dest, std, sta, direction, route}
}

func newTestSource(t *testing.T, state *mockState) *ClickHouseSource {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.QueryTimeout = 5 * time.Second
	return &ClickHouseSource{
		conn:  newMockDB(t, state),
		table: "ops.schedules",
		cfg:   cfg,
		retry: retryPolicy{
			attempts: 3,
			base:     time.Millisecond,
			ceiling:  time.Millisecond,
			sleep:    func(context.Context, time.Duration) error { return nil },
		},
	}
}

func TestClickHouseSourceLoad(t *testing.T) {
	state := &mockState{
		columns: scheduleColumns,
		pages: [][][]driver.Value{{
			scheduleRow("S25", "KE", "081", "JFK", "ICN", "13:00", "16:30", "To ICN", "US"),
			scheduleRow(nil, "KE", "123", "ICN", "NRT", "17:20", "19:40", "From ICN", "ASIA"),
			scheduleRow("S25", "KE", "999", "ICN", "NRT", "17:20", "19:40", "Unknown", "ASIA"),
		}},
	}
	source := newTestSource(t, state)

	snap, err := source.Load(context.Background(), "S25-v2")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap.Name != "S25-v2" {
		t.Fatalf("expected snapshot name S25-v2, got %q", snap.Name)
	}
	if len(snap.Legs) != 2 || snap.Skipped != 1 {
		t.Fatalf("expected 2 legs and 1 skipped row, got %d/%d", len(snap.Legs), snap.Skipped)
	}
	if snap.Legs[1].Season != "" {
		t.Fatalf("expected NULL season to load as empty, got %q", snap.Legs[1].Season)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if len(state.calls) != 1 {
		t.Fatalf("expected 1 query, got %d", len(state.calls))
	}
	call := state.calls[0]
	if !strings.Contains(call.query, "FROM ops.schedules") {
		t.Fatalf("expected query to target ops.schedules, got %s", call.query)
	}
	if len(call.args) != 1 || call.args[0].Value != "S25-v2" {
		t.Fatalf("expected snapshot argument, got %v", call.args)
	}
}

func TestClickHouseSourceLoadRetriesTransientErrors(t *testing.T) {
	state := &mockState{
		columns: scheduleColumns,
		pages: [][][]driver.Value{
			nil,
			{scheduleRow("S25", "KE", "081", "JFK", "ICN", "13:00", "16:30", "To ICN", "US")},
		},
		queryErrByCall: map[int]error{0: errors.New("i/o timeout")},
	}
	source := newTestSource(t, state)

	snap, err := source.Load(context.Background(), "S25")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Legs) != 1 {
		t.Fatalf("expected 1 leg, got %d", len(snap.Legs))
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if len(state.calls) != 2 {
		t.Fatalf("expected 2 query attempts, got %d", len(state.calls))
	}
}

func TestClickHouseSourceLoadAuthErrorsFailFast(t *testing.T) {
	state := &mockState{
		columns:        scheduleColumns,
		queryErrByCall: map[int]error{0: errors.New("code: 516, message: Authentication failed")},
	}
	source := newTestSource(t, state)

	_, err := source.Load(context.Background(), "S25")
	if err == nil || !strings.Contains(strings.ToLower(err.Error()), "authentication failed") {
		t.Fatalf("expected auth failure, got %v", err)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if len(state.calls) != 1 {
		t.Fatalf("expected auth error to fail fast (1 attempt), got %d", len(state.calls))
	}
}

func TestClickHouseSourceLoadUnknownTableIsNotRetried(t *testing.T) {
	state := &mockState{
		columns:        scheduleColumns,
		queryErrByCall: map[int]error{0: &clickhouse.Exception{Code: 60, Name: "DB::Exception", Message: "Table ops.schedules does not exist"}},
	}
	source := newTestSource(t, state)

	_, err := source.Load(context.Background(), "S25")
	if !errors.Is(err, ErrScheduleTable) {
		t.Fatalf("expected ErrScheduleTable, got %v", err)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if len(state.calls) != 1 {
		t.Fatalf("expected a single attempt for a missing table, got %d", len(state.calls))
	}
}

func TestClickHouseSourceSnapshots(t *testing.T) {
	state := &mockState{
		columns: []string{"snapshot"},
		pages:   [][][]driver.Value{{{"S25-v1"}, {"S25-v2"}}},
	}
	source := newTestSource(t, state)

	names, err := source.Snapshots(context.Background())
	if err != nil {
		t.Fatalf("Snapshots failed: %v", err)
	}
	if strings.Join(names, ",") != "S25-v1,S25-v2" {
		t.Fatalf("unexpected snapshot names: %v", names)
	}
}

func TestNewClickHouseSourceRejectsTableName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ClickHouseDSN = "clickhouse://localhost:9000/default"
	cfg.ClickHouseTable = "schedules; DROP TABLE x"

	if _, err := NewClickHouseSource(context.Background(), cfg); err == nil {
		t.Fatal("expected invalid table name to be rejected")
	}
}

func TestClickHouseSourceIntegration(t *testing.T) {
	dsn := os.Getenv("HUBCONN_TEST_CLICKHOUSE_DSN")
	if dsn == "" {
		t.Skip("HUBCONN_TEST_CLICKHOUSE_DSN not set")
	}

	cfg := config.DefaultConfig()
	cfg.ClickHouseDSN = dsn
	if table := os.Getenv("HUBCONN_TEST_CLICKHOUSE_TABLE"); table != "" {
		cfg.ClickHouseTable = table
	}

	source, err := NewClickHouseSource(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewClickHouseSource failed: %v", err)
	}
	defer func() {
		_ = source.Close()
	}()

	if _, err := source.Snapshots(context.Background()); err != nil {
		t.Fatalf("Snapshots failed: %v", err)
	}
}
