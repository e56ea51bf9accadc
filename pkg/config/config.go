package config

import (
	"strings"
	"time"
)

// Config holds all runtime configuration
type Config struct {
	// Hub settings. Empty labels default to "To <hub>" and "From <hub>".
	Hub           string
	InboundLabel  string
	OutboundLabel string

	// Threshold settings (minutes)
	MinConnect int
	MaxConnect int

	// Group selections
	GroupARoutes   []string
	GroupACarriers []string
	GroupBRoutes   []string
	GroupBCarriers []string

	// Load filters
	ExcludeCarriers []string
	ExcludeAirports []string

	// ClickHouse source settings
	ClickHouseDSN   string
	ClickHouseTable string
	QueryTimeout    time.Duration

	// Output settings
	OutputDir string
	Format    string

	// Result cache settings
	CacheEnabled bool
	CachePath    string
	CacheTTL     time.Duration

	// Baseline settings
	BaselinePath   string
	UpdateBaseline bool
	FailOnLost     bool

	// Operational flags
	Verbose bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Hub:             "ICN",
		MinConnect:      45,
		MaxConnect:      1440,
		GroupARoutes:    []string{},
		GroupACarriers:  []string{},
		GroupBRoutes:    []string{},
		GroupBCarriers:  []string{},
		ExcludeCarriers: []string{},
		ExcludeAirports: []string{},
		ClickHouseTable: "schedules",
		QueryTimeout:    2 * time.Minute,
		OutputDir:       "./report",
		Format:          "json",
		CacheEnabled:    true,
		CacheTTL:        24 * time.Hour,
		Verbose:         false,
	}
}

// InboundDirection returns the direction cell value that marks arrivals at
// the hub.
func (c *Config) InboundDirection() string {
	if label := strings.TrimSpace(c.InboundLabel); label != "" {
		return label
	}
	return "To " + strings.ToUpper(strings.TrimSpace(c.Hub))
}

// OutboundDirection returns the direction cell value that marks departures
// from the hub.
func (c *Config) OutboundDirection() string {
	if label := strings.TrimSpace(c.OutboundLabel); label != "" {
		return label
	}
	return "From " + strings.ToUpper(strings.TrimSpace(c.Hub))
}
