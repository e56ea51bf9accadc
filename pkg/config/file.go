package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFileYAML is the canonical config filename.
	DefaultConfigFileYAML = ".hubconn.yaml"
	// DefaultConfigFileYML is a compatible alternate config filename.
	DefaultConfigFileYML = ".hubconn.yml"
)

// GroupFile is a group selection as written in the config file.
type GroupFile struct {
	Routes   []string `yaml:"routes"`
	Carriers []string `yaml:"carriers"`
}

// FileConfig represents values loaded from a .hubconn.yaml file.
type FileConfig struct {
	Hub             string    `yaml:"hub"`
	MinConnect      *int      `yaml:"min_connect"`
	MaxConnect      *int      `yaml:"max_connect"`
	InboundLabel    string    `yaml:"inbound_label"`
	OutboundLabel   string    `yaml:"outbound_label"`
	GroupA          GroupFile `yaml:"group_a"`
	GroupB          GroupFile `yaml:"group_b"`
	ExcludeCarriers []string  `yaml:"exclude_carriers"`
	ExcludeAirports []string  `yaml:"exclude_airports"`
	Format          string    `yaml:"format"`
	CacheTTL        string    `yaml:"cache_ttl"`
	CachePath       string    `yaml:"cache_path"`
	ClickHouseDSN   string    `yaml:"clickhouse_dsn"`
	ClickHouseTable string    `yaml:"clickhouse_table"`
	Timeout         string    `yaml:"timeout"`
}

// Normalize trims and removes empty items from list fields.
func (fc *FileConfig) Normalize() {
	if fc == nil {
		return
	}
	fc.Hub = strings.TrimSpace(fc.Hub)
	fc.InboundLabel = strings.TrimSpace(fc.InboundLabel)
	fc.OutboundLabel = strings.TrimSpace(fc.OutboundLabel)
	fc.GroupA.Routes = normalizeList(fc.GroupA.Routes)
	fc.GroupA.Carriers = normalizeList(fc.GroupA.Carriers)
	fc.GroupB.Routes = normalizeList(fc.GroupB.Routes)
	fc.GroupB.Carriers = normalizeList(fc.GroupB.Carriers)
	fc.ExcludeCarriers = normalizeList(fc.ExcludeCarriers)
	fc.ExcludeAirports = normalizeList(fc.ExcludeAirports)
	fc.Format = strings.TrimSpace(fc.Format)
	fc.CacheTTL = strings.TrimSpace(fc.CacheTTL)
	fc.CachePath = strings.TrimSpace(fc.CachePath)
	fc.ClickHouseDSN = strings.TrimSpace(fc.ClickHouseDSN)
	fc.ClickHouseTable = strings.TrimSpace(fc.ClickHouseTable)
	fc.Timeout = strings.TrimSpace(fc.Timeout)
}

// ApplyTo copies file values into cfg. Fields whose command-line flag was set
// explicitly are left alone; changed may be nil when no flags are involved.
func (fc *FileConfig) ApplyTo(cfg *Config, changed func(flag string) bool) error {
	if fc == nil || cfg == nil {
		return nil
	}
	if changed == nil {
		changed = func(string) bool { return false }
	}

	setString := func(flag, value string, dst *string) {
		if value != "" && !changed(flag) {
			*dst = value
		}
	}
	setList := func(flag string, value []string, dst *[]string) {
		if len(value) > 0 && !changed(flag) {
			*dst = append([]string(nil), value...)
		}
	}

	setString("hub", fc.Hub, &cfg.Hub)
	setString("inbound-label", fc.InboundLabel, &cfg.InboundLabel)
	setString("outbound-label", fc.OutboundLabel, &cfg.OutboundLabel)
	setString("format", fc.Format, &cfg.Format)
	setString("cache-path", fc.CachePath, &cfg.CachePath)
	setString("clickhouse-dsn", fc.ClickHouseDSN, &cfg.ClickHouseDSN)
	setString("clickhouse-table", fc.ClickHouseTable, &cfg.ClickHouseTable)

	if fc.MinConnect != nil && !changed("min-connect") {
		cfg.MinConnect = *fc.MinConnect
	}
	if fc.MaxConnect != nil && !changed("max-connect") {
		cfg.MaxConnect = *fc.MaxConnect
	}

	setList("group-a-routes", fc.GroupA.Routes, &cfg.GroupARoutes)
	setList("group-a-carriers", fc.GroupA.Carriers, &cfg.GroupACarriers)
	setList("group-b-routes", fc.GroupB.Routes, &cfg.GroupBRoutes)
	setList("group-b-carriers", fc.GroupB.Carriers, &cfg.GroupBCarriers)
	setList("exclude-carrier", fc.ExcludeCarriers, &cfg.ExcludeCarriers)
	setList("exclude-airport", fc.ExcludeAirports, &cfg.ExcludeAirports)

	if fc.CacheTTL != "" && !changed("cache-ttl") {
		ttl, err := ParseDuration(fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache_ttl %q: %w", fc.CacheTTL, err)
		}
		cfg.CacheTTL = ttl
	}
	if fc.Timeout != "" && !changed("timeout") {
		timeout, err := ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", fc.Timeout, err)
		}
		cfg.QueryTimeout = timeout
	}

	return nil
}

// AutoLoadFile discovers and loads the first available config file.
func AutoLoadFile() (*FileConfig, string, error) {
	candidates := []string{
		DefaultConfigFileYAML,
		DefaultConfigFileYML,
	}

	if homeDir, err := os.UserHomeDir(); err == nil && strings.TrimSpace(homeDir) != "" {
		candidates = append(candidates,
			filepath.Join(homeDir, DefaultConfigFileYAML),
			filepath.Join(homeDir, DefaultConfigFileYML),
		)
	}

	return LoadFirstExistingFile(candidates)
}

// LoadFirstExistingFile loads the first config file that exists in paths.
func LoadFirstExistingFile(paths []string) (*FileConfig, string, error) {
	for _, path := range paths {
		candidate := strings.TrimSpace(path)
		if candidate == "" {
			continue
		}

		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to access config file %q: %w", candidate, err)
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("config path %q is a directory, expected a file", candidate)
		}

		cfg, err := LoadFile(candidate)
		if err != nil {
			return nil, "", err
		}
		return cfg, candidate, nil
	}

	return nil, "", nil
}

// LoadFile loads config values from a specific YAML file path.
func LoadFile(path string) (*FileConfig, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	cfg.Normalize()
	return cfg, nil
}

func normalizeList(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}

	normalized := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
