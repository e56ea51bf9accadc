package models

import "time"

// Report is the complete output structure
type Report struct {
	Tool        string            `json:"tool"`
	Version     string            `json:"version"`
	Timestamp   string            `json:"timestamp"`
	RunID       string            `json:"run_id"`
	Metadata    Metadata          `json:"metadata"`
	Connections []Connection      `json:"connections"`
	Summary     *AnalysisSummary  `json:"summary,omitempty"`
	Comparison  *ComparisonReport `json:"comparison,omitempty"`
	Flights     *FlightDiff       `json:"flights,omitempty"`
	Suppressed  int               `json:"baseline_suppressed,omitempty"`
}

// Metadata contains report generation info
type Metadata struct {
	GeneratedAt      time.Time `json:"generated_at"`
	Mode             string    `json:"mode"` // "analyze", "compare", "flights"
	Hub              string    `json:"hub"`
	MinConnect       int       `json:"min_connect"`
	MaxConnect       int       `json:"max_connect"`
	GroupA           Group     `json:"group_a"`
	GroupB           Group     `json:"group_b"`
	Snapshots        []string  `json:"snapshots"`
	LegsAnalyzed     int       `json:"legs_analyzed"`
	SkippedRows      int       `json:"skipped_rows"`
	AnalysisDuration string    `json:"analysis_duration"`
	Version          string    `json:"version"`
	Cached           bool      `json:"cached"`
}

// AnalysisSummary aggregates one analysis run
type AnalysisSummary struct {
	ByDirection   []DirectionCount `json:"by_direction"`
	MeanConnected []DirectionMean  `json:"mean_connected"`
	ByRoutePair   []PairSummary    `json:"by_route_pair"`
	Airports      []string         `json:"airports"`
}

// DirectionCount counts classifications for one direction label
type DirectionCount struct {
	Direction  string `json:"direction"`
	Connected  int    `json:"connected"`
	Disconnect int    `json:"disconnect"`
}

// DirectionMean is the mean ground time of connected pairs in one direction
type DirectionMean struct {
	Direction         string  `json:"direction"`
	MeanGroundMinutes float64 `json:"mean_conn_min"`
}

// PairSummary counts classifications per route/carrier combination
type PairSummary struct {
	InboundRoute    string `json:"inbound_route"`
	InboundCarrier  string `json:"inbound_carrier"`
	OutboundRoute   string `json:"outbound_route"`
	OutboundCarrier string `json:"outbound_carrier"`
	Connected       int    `json:"connected"`
	Disconnect      int    `json:"disconnect"`
	Total           int    `json:"total"`
}

// ComparisonReport diffs the connected pairs of two snapshots
type ComparisonReport struct {
	Before      []Connection    `json:"before"`
	After       []Connection    `json:"after"`
	Lost        []Connection    `json:"lost_connections"`
	New         []Connection    `json:"new_connections"`
	Common      []ConnectionKey `json:"common"`
	TimeChanges []TimeChange    `json:"time_changes"`
	Stats       ComparisonStats `json:"stats"`
}

// TimeChange is a connection present in both snapshots with a different ground time
type TimeChange struct {
	Key            ConnectionKey `json:"key"`
	Direction      string        `json:"direction"`
	GroundMinutes1 int           `json:"conn_min_1"`
	GroundMinutes2 int           `json:"conn_min_2"`
	Arrival1       string        `json:"arr_time_1"`
	Departure1     string        `json:"dep_time_1"`
	Arrival2       string        `json:"arr_time_2"`
	Departure2     string        `json:"dep_time_2"`
	TimeDiff       int           `json:"time_diff"`
}

// ComparisonStats counts identities, not rows
type ComparisonStats struct {
	TotalConn1  int `json:"total_conn_1"`
	TotalConn2  int `json:"total_conn_2"`
	Lost        int `json:"lost"`
	New         int `json:"new"`
	Common      int `json:"common"`
	TimeChanged int `json:"time_changed"`
}

// FlightDiff lists structural changes between two snapshots
type FlightDiff struct {
	Removed []FlightLeg     `json:"removed"`
	Added   []FlightLeg     `json:"added"`
	Retimed []RetimedFlight `json:"time_changed"`
	Stats   FlightDiffStats `json:"stats"`
}

// RetimedFlight carries the old and new schedule times of one flight
type RetimedFlight struct {
	Key          FlightKey `json:"key"`
	Route        string    `json:"route"`
	Direction    Direction `json:"direction"`
	OldDeparture string    `json:"std_old"`
	NewDeparture string    `json:"std_new"`
	OldArrival   string    `json:"sta_old"`
	NewArrival   string    `json:"sta_new"`
}

// FlightDiffStats counts flight identities
type FlightDiffStats struct {
	Total1      int `json:"total_1"`
	Total2      int `json:"total_2"`
	Removed     int `json:"removed"`
	Added       int `json:"added"`
	Common      int `json:"common"`
	TimeChanged int `json:"time_changed"`
}
