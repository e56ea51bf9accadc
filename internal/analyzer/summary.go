package analyzer

import (
	"math"
	"sort"

	"github.com/ppiankov/hubconn/internal/models"
)

type pairKey struct {
	inboundRoute    string
	inboundCarrier  string
	outboundRoute   string
	outboundCarrier string
}

// Summarize aggregates connections per direction and per route/carrier pair.
func Summarize(connections []models.Connection, hub string) models.AnalysisSummary {
	summary := models.AnalysisSummary{
		ByDirection:   []models.DirectionCount{},
		MeanConnected: []models.DirectionMean{},
		ByRoutePair:   []models.PairSummary{},
		Airports:      []string{},
	}

	directionIndex := make(map[string]int)
	groundTotals := make(map[string]int)
	pairs := make(map[pairKey]*models.PairSummary)
	airports := make(map[string]struct{})

	for _, conn := range connections {
		idx, ok := directionIndex[conn.Direction]
		if !ok {
			idx = len(summary.ByDirection)
			directionIndex[conn.Direction] = idx
			summary.ByDirection = append(summary.ByDirection, models.DirectionCount{Direction: conn.Direction})
		}

		key := pairKey{conn.InboundRoute, conn.InboundCarrier, conn.OutboundRoute, conn.OutboundCarrier}
		pair, ok := pairs[key]
		if !ok {
			pair = &models.PairSummary{
				InboundRoute:    conn.InboundRoute,
				InboundCarrier:  conn.InboundCarrier,
				OutboundRoute:   conn.OutboundRoute,
				OutboundCarrier: conn.OutboundCarrier,
			}
			pairs[key] = pair
		}
		pair.Total++

		if conn.Connected() {
			summary.ByDirection[idx].Connected++
			groundTotals[conn.Direction] += conn.GroundMinutes
			pair.Connected++
		} else {
			summary.ByDirection[idx].Disconnect++
			pair.Disconnect++
		}

		switch conn.Direction {
		case LabelAToB:
			airports[conn.From] = struct{}{}
		case LabelBToA:
			airports[conn.To] = struct{}{}
		}
	}

	for _, count := range summary.ByDirection {
		if count.Connected == 0 {
			continue
		}
		mean := float64(groundTotals[count.Direction]) / float64(count.Connected)
		summary.MeanConnected = append(summary.MeanConnected, models.DirectionMean{
			Direction:         count.Direction,
			MeanGroundMinutes: math.Round(mean*10) / 10,
		})
	}

	for _, pair := range pairs {
		summary.ByRoutePair = append(summary.ByRoutePair, *pair)
	}
	sort.Slice(summary.ByRoutePair, func(i, j int) bool {
		a, b := summary.ByRoutePair[i], summary.ByRoutePair[j]
		if a.Connected != b.Connected {
			return a.Connected > b.Connected
		}
		if a.InboundRoute != b.InboundRoute {
			return a.InboundRoute < b.InboundRoute
		}
		if a.InboundCarrier != b.InboundCarrier {
			return a.InboundCarrier < b.InboundCarrier
		}
		if a.OutboundRoute != b.OutboundRoute {
			return a.OutboundRoute < b.OutboundRoute
		}
		return a.OutboundCarrier < b.OutboundCarrier
	})

	delete(airports, hub)
	for airport := range airports {
		summary.Airports = append(summary.Airports, airport)
	}
	sort.Strings(summary.Airports)

	return summary
}
