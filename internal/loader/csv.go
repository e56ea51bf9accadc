package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/pkg/config"
)

// ErrMissingColumns is returned when a schedule lacks a required column.
var ErrMissingColumns = errors.New("missing required columns")

const (
	colSeason    = "SEASON"
	colCarrier   = "OPS"
	colFlightNo  = "FLT NO"
	colDirection = "구분"
	colSTD       = "STD"
	colSTA       = "STA"
	colOrigin    = "ORGN"
	colDest      = "DEST"
	colRoute     = "ROUTE"
)

var requiredColumns = []string{colCarrier, colFlightNo, colDirection, colSTD, colSTA, colOrigin, colDest, colRoute}

var columnAliases = map[string]string{
	"DESTINATION": colDest,
	"DIRECTION":   colDirection,
}

func errInvalidDirection(value string) error {
	return fmt.Errorf("invalid direction %q", value)
}

// LoadCSVFile reads a schedule snapshot from a CSV file. The snapshot is
// named after the file.
func LoadCSVFile(path string, cfg *config.Config) (*models.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule %q: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	snap, err := LoadCSV(f, filepath.Base(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule %q: %w", path, err)
	}
	return snap, nil
}

// LoadCSV reads a schedule snapshot from UTF-8 CSV data. Headers and cells are
// trimmed. Rows with empty identity fields or an unknown direction are skipped
// and counted; rows with malformed times are kept.
func LoadCSV(r io.Reader, name string, cfg *config.Config) (*models.Snapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(requiredColumns, ", "))
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	headerMap := buildHeaderMap(header)
	if missing := missingColumns(headerMap); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	c := newCollector(cfg)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if blankRow(row) {
			continue
		}

		getField := func(column string) string {
			if idx, ok := headerMap[column]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		rec := record{
			Season:    getField(colSeason),
			Carrier:   getField(colCarrier),
			FlightNo:  getField(colFlightNo),
			Origin:    getField(colOrigin),
			Dest:      getField(colDest),
			STD:       getField(colSTD),
			STA:       getField(colSTA),
			Direction: getField(colDirection),
			Route:     getField(colRoute),
		}
		if err := c.add(rec); err != nil {
			slog.Debug("skipping schedule row",
				slog.String("snapshot", name),
				slog.Int("line", line),
				slog.String("error", err.Error()),
			)
		}
	}

	if c.skipped > 0 || c.excluded > 0 {
		slog.Info("schedule rows filtered",
			slog.String("snapshot", name),
			slog.Int("skipped", c.skipped),
			slog.Int("excluded", c.excluded),
		)
	}

	return c.snapshot(name), nil
}

func buildHeaderMap(header []string) map[string]int {
	headerMap := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if canonical, ok := columnAliases[name]; ok {
			if _, exists := headerMap[canonical]; exists {
				continue
			}
			name = canonical
		}
		if _, exists := headerMap[name]; !exists {
			headerMap[name] = i
		}
	}
	return headerMap
}

func missingColumns(headerMap map[string]int) []string {
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := headerMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
