package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/hubconn/internal/models"
)

const (
	// DefaultPath is used when --update-baseline is enabled without an explicit --baseline path.
	DefaultPath = ".hubconn-baseline.json"
	fileVersion = 1
)

// Set stores baseline fingerprints.
type Set map[string]struct{}

// File is the persisted baseline JSON payload.
type File struct {
	Version      int      `json:"version"`
	Fingerprints []string `json:"fingerprints"`
}

// Load reads a baseline file. Missing files return an empty set.
func Load(path string) (Set, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("baseline path is empty")
	}

	data, err := os.ReadFile(trimmed)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("read baseline file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse baseline file: %w", err)
	}
	if file.Version != 0 && file.Version != fileVersion {
		return nil, fmt.Errorf("unsupported baseline version: %d", file.Version)
	}

	set := Set{}
	AddAll(set, file.Fingerprints)
	return set, nil
}

// Save writes a baseline file with sorted, unique fingerprints.
func Save(path string, set Set) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return errors.New("baseline path is empty")
	}

	if dir := filepath.Dir(trimmed); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create baseline directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(File{Version: fileVersion, Fingerprints: Sorted(set)}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline file: %w", err)
	}

	if err := os.WriteFile(trimmed, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write baseline file: %w", err)
	}

	return nil
}

// AddAll inserts fingerprints into the target set.
func AddAll(target Set, fingerprints []string) {
	for _, fingerprint := range fingerprints {
		if fingerprint == "" {
			continue
		}
		target[fingerprint] = struct{}{}
	}
}

// Sorted returns sorted fingerprints from a set.
func Sorted(set Set) []string {
	fingerprints := make([]string, 0, len(set))
	for fingerprint := range set {
		fingerprints = append(fingerprints, fingerprint)
	}
	sort.Strings(fingerprints)
	return fingerprints
}

// CountFindings returns the number of regressions in a comparison report:
// lost connections plus removed flights.
func CountFindings(report *models.Report) int {
	if report == nil {
		return 0
	}

	count := 0
	if report.Comparison != nil {
		count += len(report.Comparison.Lost)
	}
	if report.Flights != nil {
		count += len(report.Flights.Removed)
	}
	return count
}

// CollectFingerprints extracts fingerprints for all current findings in the report.
func CollectFingerprints(report *models.Report) []string {
	set := Set{}
	if report == nil {
		return []string{}
	}

	if report.Comparison != nil {
		for _, conn := range report.Comparison.Lost {
			set[FingerprintLostConnection(conn.Key())] = struct{}{}
		}
	}
	if report.Flights != nil {
		for _, leg := range report.Flights.Removed {
			set[FingerprintRemovedFlight(leg.Key())] = struct{}{}
		}
	}

	return Sorted(set)
}

// SuppressKnown removes findings already present in the baseline set.
// Diff statistics are left untouched.
func SuppressKnown(report *models.Report, known Set) (suppressed int, remaining int) {
	if report == nil || len(known) == 0 {
		return 0, CountFindings(report)
	}

	if report.Comparison != nil {
		filtered := make([]models.Connection, 0, len(report.Comparison.Lost))
		for _, conn := range report.Comparison.Lost {
			if _, exists := known[FingerprintLostConnection(conn.Key())]; exists {
				suppressed++
				continue
			}
			filtered = append(filtered, conn)
		}
		report.Comparison.Lost = filtered
	}

	if report.Flights != nil {
		filtered := make([]models.FlightLeg, 0, len(report.Flights.Removed))
		for _, leg := range report.Flights.Removed {
			if _, exists := known[FingerprintRemovedFlight(leg.Key())]; exists {
				suppressed++
				continue
			}
			filtered = append(filtered, leg)
		}
		report.Flights.Removed = filtered
	}

	report.Suppressed += suppressed
	return suppressed, CountFindings(report)
}

// FingerprintLostConnection returns a stable fingerprint for a lost connection.
func FingerprintLostConnection(key models.ConnectionKey) string {
	return hash("lost_connection", key.InboundFlight, key.OutboundFlight, key.Origin, key.Destination)
}

// FingerprintRemovedFlight returns a stable fingerprint for a removed flight.
func FingerprintRemovedFlight(key models.FlightKey) string {
	return hash("removed_flight", key.Carrier, key.FlightNo, key.Origin, key.Destination)
}

func hash(parts ...string) string {
	canonical := strings.Join(parts, "\x1f")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
