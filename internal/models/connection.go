package models

// Status is the feasibility classification of an inbound/outbound pair
type Status string

const (
	StatusConnected  Status = "Connected"
	StatusDisconnect Status = "Disconnect"
)

// Connection is one inbound x outbound pair through the hub.
type Connection struct {
	Direction        string `json:"direction"`
	InboundRoute     string `json:"inbound_route"`
	OutboundRoute    string `json:"outbound_route"`
	InboundCarrier   string `json:"inbound_carrier"`
	OutboundCarrier  string `json:"outbound_carrier"`
	InboundFlight    string `json:"inbound_flight_no"`
	OutboundFlight   string `json:"outbound_flight_no"`
	From             string `json:"from"`
	Via              string `json:"via"`
	To               string `json:"to"`
	InboundSummary   string `json:"inbound_flight"`
	OutboundSummary  string `json:"outbound_flight"`
	HubArrival       string `json:"hub_arr_time"`
	HubDeparture     string `json:"hub_dep_time"`
	ArrivalMinutes   int    `json:"arr_min"`
	DepartureMinutes int    `json:"dep_min"`
	GroundMinutes    int    `json:"conn_min"`
	Status           Status `json:"status"`
}

// Connected reports whether the pair falls inside the thresholds.
func (c Connection) Connected() bool {
	return c.Status == StatusConnected
}

// Key returns the identity used to track the pair across snapshots.
func (c Connection) Key() ConnectionKey {
	return ConnectionKey{
		InboundFlight:  c.InboundFlight,
		OutboundFlight: c.OutboundFlight,
		Origin:         c.From,
		Destination:    c.To,
	}
}

// ConnectionKey is stable across snapshots for the same logical connection
type ConnectionKey struct {
	InboundFlight  string `json:"inbound_flight_no"`
	OutboundFlight string `json:"outbound_flight_no"`
	Origin         string `json:"from"`
	Destination    string `json:"to"`
}

func (k ConnectionKey) String() string {
	return k.InboundFlight + "_" + k.OutboundFlight + "_" + k.Origin + "_" + k.Destination
}
