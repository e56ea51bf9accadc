package analyzer

import (
	"fmt"
	"log/slog"

	"github.com/ppiankov/hubconn/internal/models"
)

// Match pairs every inbound leg with every outbound leg and classifies each
// pair against [minConnect, maxConnect]. Output order is inbound-major in
// input order. Legs whose hub time does not parse contribute no pairs.
func Match(inbound, outbound []models.FlightLeg, minConnect, maxConnect int, direction, hub string) []models.Connection {
	if len(inbound) == 0 || len(outbound) == 0 {
		return []models.Connection{}
	}

	departures := make([]int, len(outbound))
	usable := make([]bool, len(outbound))
	for i, leg := range outbound {
		minutes, err := ParseTimeOfDay(leg.Departure)
		if err != nil {
			slog.Debug("skipping outbound leg",
				slog.String("flight", leg.FlightID()),
				slog.String("error", err.Error()),
			)
			continue
		}
		departures[i] = minutes
		usable[i] = true
	}

	connections := make([]models.Connection, 0, len(inbound)*len(outbound))
	for _, in := range inbound {
		arrival, err := ParseTimeOfDay(in.Arrival)
		if err != nil {
			slog.Debug("skipping inbound leg",
				slog.String("flight", in.FlightID()),
				slog.String("error", err.Error()),
			)
			continue
		}

		for i, out := range outbound {
			if !usable[i] {
				continue
			}
			ground := GroundTime(arrival, departures[i])
			connections = append(connections, models.Connection{
				Direction:        direction,
				InboundRoute:     in.Route,
				OutboundRoute:    out.Route,
				InboundCarrier:   in.Carrier,
				OutboundCarrier:  out.Carrier,
				InboundFlight:    in.FlightID(),
				OutboundFlight:   out.FlightID(),
				From:             in.Origin,
				Via:              hub,
				To:               out.Destination,
				InboundSummary:   fmt.Sprintf("[%s] %s->%s (Arr %s)", in.FlightID(), in.Origin, in.Destination, in.Arrival),
				OutboundSummary:  fmt.Sprintf("[%s] %s->%s (Dep %s)", out.FlightID(), out.Origin, out.Destination, out.Departure),
				HubArrival:       in.Arrival,
				HubDeparture:     out.Departure,
				ArrivalMinutes:   arrival,
				DepartureMinutes: departures[i],
				GroundMinutes:    ground,
				Status:           Classify(ground, minConnect, maxConnect),
			})
		}
	}

	return connections
}
