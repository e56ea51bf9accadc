package config

import (
	"path"
	"strings"
)

// Normalize trims config patterns and removes empty values.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.ExcludeCarriers = normalizePatterns(c.ExcludeCarriers)
	c.ExcludeAirports = normalizePatterns(c.ExcludeAirports)
	c.GroupARoutes = normalizeList(c.GroupARoutes)
	c.GroupACarriers = normalizeList(c.GroupACarriers)
	c.GroupBRoutes = normalizeList(c.GroupBRoutes)
	c.GroupBCarriers = normalizeList(c.GroupBCarriers)
}

// IsCarrierExcluded reports whether carrier matches exclude patterns.
func (c *Config) IsCarrierExcluded(carrier string) bool {
	if c == nil {
		return false
	}
	return matchesAny(c.ExcludeCarriers, carrier)
}

// IsAirportExcluded reports whether airport matches exclude patterns.
func (c *Config) IsAirportExcluded(airport string) bool {
	if c == nil {
		return false
	}
	return matchesAny(c.ExcludeAirports, airport)
}

// IsLegExcluded reports whether a leg's carrier or either endpoint is excluded.
// The hub itself is never excluded.
func (c *Config) IsLegExcluded(carrier, origin, destination string) bool {
	if c.IsCarrierExcluded(carrier) {
		return true
	}
	for _, airport := range []string{origin, destination} {
		if strings.EqualFold(strings.TrimSpace(airport), strings.TrimSpace(c.Hub)) {
			continue
		}
		if c.IsAirportExcluded(airport) {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, value string) bool {
	if len(patterns) == 0 {
		return false
	}

	normalized := normalizePattern(value)
	if normalized == "" {
		return false
	}

	for _, pattern := range patterns {
		if patternMatches(pattern, normalized) {
			return true
		}
	}
	return false
}

func normalizePatterns(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}

	normalized := make([]string, 0, len(values))
	for _, pattern := range values {
		p := normalizePattern(pattern)
		if p == "" {
			continue
		}
		normalized = append(normalized, p)
	}
	return normalized
}

func normalizePattern(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func patternMatches(pattern, value string) bool {
	normalizedPattern := normalizePattern(pattern)
	normalizedValue := normalizePattern(value)
	if normalizedPattern == "" || normalizedValue == "" {
		return false
	}

	// Invalid glob patterns are treated as exact matches.
	matched, err := path.Match(normalizedPattern, normalizedValue)
	if err == nil {
		return matched
	}
	return normalizedPattern == normalizedValue
}
