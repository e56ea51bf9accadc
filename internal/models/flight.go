package models

import (
	"fmt"
	"strings"
)

// Direction tags a leg relative to the hub
type Direction string

const (
	DirectionInbound  Direction = "INBOUND"  // arriving at the hub
	DirectionOutbound Direction = "OUTBOUND" // departing from the hub
)

// Valid reports whether d is one of the two hub directions.
func (d Direction) Valid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// FlightLeg is one scheduled flight segment from a schedule file
type FlightLeg struct {
	Season      string    `json:"season,omitempty"`
	Carrier     string    `json:"carrier"`
	FlightNo    string    `json:"flight_no"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Departure   string    `json:"std"` // HH:MM
	Arrival     string    `json:"sta"` // HH:MM
	Route       string    `json:"route"`
	Direction   Direction `json:"direction"`
}

// FlightID returns the carrier-prefixed flight number, e.g. "KE081".
func (l FlightLeg) FlightID() string {
	return l.Carrier + l.FlightNo
}

// Key returns the identity used to match the same flight across snapshots.
func (l FlightLeg) Key() FlightKey {
	return FlightKey{
		Carrier:     l.Carrier,
		FlightNo:    l.FlightNo,
		Origin:      l.Origin,
		Destination: l.Destination,
	}
}

// Validate checks the structural fields of a leg. Times are not checked here:
// an unparseable time only removes the leg from pair generation.
func (l FlightLeg) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"carrier", l.Carrier},
		{"flight_no", l.FlightNo},
		{"origin", l.Origin},
		{"destination", l.Destination},
		{"route", l.Route},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is required", field.name)
		}
	}
	if !l.Direction.Valid() {
		return fmt.Errorf("invalid direction %q", l.Direction)
	}
	return nil
}

// FlightKey identifies a flight independent of its route tag and direction
type FlightKey struct {
	Carrier     string `json:"carrier"`
	FlightNo    string `json:"flight_no"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

func (k FlightKey) String() string {
	return k.Carrier + k.FlightNo + "_" + k.Origin + "_" + k.Destination
}

// Snapshot is one loaded version of a published schedule.
// Legs must not be modified after loading; a new version is a new Snapshot.
type Snapshot struct {
	Name    string      `json:"name"`
	Legs    []FlightLeg `json:"legs"`
	Skipped int         `json:"skipped_rows"`
}

// NewSnapshot copies legs into a new snapshot.
func NewSnapshot(name string, legs []FlightLeg) *Snapshot {
	owned := make([]FlightLeg, len(legs))
	copy(owned, legs)
	return &Snapshot{Name: name, Legs: owned}
}

// Routes returns the distinct route tags in first-seen order.
func (s *Snapshot) Routes() []string {
	return distinct(s.Legs, func(l FlightLeg) string { return l.Route })
}

// Carriers returns the distinct carrier codes in first-seen order.
func (s *Snapshot) Carriers() []string {
	return distinct(s.Legs, func(l FlightLeg) string { return l.Carrier })
}

func distinct(legs []FlightLeg, field func(FlightLeg) string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, leg := range legs {
		value := field(leg)
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}

// Group selects legs by route tag and carrier for bidirectional analysis
type Group struct {
	Routes   []string `json:"routes" yaml:"routes"`
	Carriers []string `json:"carriers" yaml:"carriers"`
}

// Contains reports whether a leg's route and carrier both belong to the group.
func (g Group) Contains(leg FlightLeg) bool {
	return containsString(g.Routes, leg.Route) && containsString(g.Carriers, leg.Carrier)
}

// Equal compares two groups as sets, ignoring order and duplicates.
func (g Group) Equal(other Group) bool {
	return sameSet(g.Routes, other.Routes) && sameSet(g.Carriers, other.Carriers)
}

// Empty reports whether the group can never select a leg.
func (g Group) Empty() bool {
	return len(g.Routes) == 0 || len(g.Carriers) == 0
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func sameSet(a, b []string) bool {
	left := make(map[string]struct{}, len(a))
	for _, v := range a {
		left[v] = struct{}{}
	}
	right := make(map[string]struct{}, len(b))
	for _, v := range b {
		right[v] = struct{}{}
	}
	if len(left) != len(right) {
		return false
	}
	for v := range left {
		if _, ok := right[v]; !ok {
			return false
		}
	}
	return true
}
