package differ

import "github.com/ppiankov/hubconn/internal/models"

// DiffFlights compares two snapshots by flight identity. Route and direction
// are not part of the identity, so a reclassified flight is neither added nor
// removed. Retimed entries keep the route and direction of the first snapshot.
func DiffFlights(before, after []models.FlightLeg) *models.FlightDiff {
	order1, last1 := indexFlights(before)
	_, last2 := indexFlights(after)

	diff := &models.FlightDiff{
		Removed: []models.FlightLeg{},
		Added:   []models.FlightLeg{},
		Retimed: []models.RetimedFlight{},
	}

	for _, leg := range before {
		if _, ok := last2[leg.Key()]; !ok {
			diff.Removed = append(diff.Removed, leg)
		}
	}
	for _, leg := range after {
		if _, ok := last1[leg.Key()]; !ok {
			diff.Added = append(diff.Added, leg)
		}
	}

	removedKeys, common := 0, 0
	for _, key := range order1 {
		old := last1[key]
		current, ok := last2[key]
		if !ok {
			removedKeys++
			continue
		}
		common++
		if old.Departure == current.Departure && old.Arrival == current.Arrival {
			continue
		}
		diff.Retimed = append(diff.Retimed, models.RetimedFlight{
			Key:          key,
			Route:        old.Route,
			Direction:    old.Direction,
			OldDeparture: old.Departure,
			NewDeparture: current.Departure,
			OldArrival:   old.Arrival,
			NewArrival:   current.Arrival,
		})
	}

	diff.Stats = models.FlightDiffStats{
		Total1:      len(last1),
		Total2:      len(last2),
		Removed:     removedKeys,
		Added:       len(last2) - common,
		Common:      common,
		TimeChanged: len(diff.Retimed),
	}

	return diff
}

func indexFlights(legs []models.FlightLeg) ([]models.FlightKey, map[models.FlightKey]models.FlightLeg) {
	order := make([]models.FlightKey, 0, len(legs))
	last := make(map[models.FlightKey]models.FlightLeg, len(legs))
	for _, leg := range legs {
		key := leg.Key()
		if _, ok := last[key]; !ok {
			order = append(order, key)
		}
		last[key] = leg
	}
	return order, last
}
