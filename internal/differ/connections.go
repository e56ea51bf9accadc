package differ

import (
	"log/slog"

	"github.com/ppiankov/hubconn/internal/analyzer"
	"github.com/ppiankov/hubconn/internal/models"
)

// connectedSet indexes the Connected pairs of one run by identity.
// A repeated identity keeps the last-seen pair; order records first appearance.
type connectedSet struct {
	order []models.ConnectionKey
	byKey map[models.ConnectionKey]models.Connection
}

func indexConnected(connections []models.Connection) connectedSet {
	set := connectedSet{byKey: make(map[models.ConnectionKey]models.Connection)}
	collisions := 0
	for _, conn := range connections {
		if !conn.Connected() {
			continue
		}
		key := conn.Key()
		if _, ok := set.byKey[key]; ok {
			collisions++
		} else {
			set.order = append(set.order, key)
		}
		set.byKey[key] = conn
	}
	if collisions > 0 {
		slog.Warn("duplicate connection identities, keeping last seen",
			slog.Int("collisions", collisions),
		)
	}
	return set
}

// DiffConnections analyzes both snapshots with the same options and reports
// which Connected pairs were lost, gained, or retimed. Disconnect pairs take
// no part in the comparison.
func DiffConnections(before, after []models.FlightLeg, opts analyzer.Options) (*models.ComparisonReport, error) {
	a, err := analyzer.New(opts)
	if err != nil {
		return nil, err
	}

	return Compare(a.Analyze(before), a.Analyze(after)), nil
}

// Compare diffs two precomputed result sets.
func Compare(results1, results2 []models.Connection) *models.ComparisonReport {
	set1 := indexConnected(results1)
	set2 := indexConnected(results2)

	report := &models.ComparisonReport{
		Before:      results1,
		After:       results2,
		Lost:        []models.Connection{},
		New:         []models.Connection{},
		Common:      []models.ConnectionKey{},
		TimeChanges: []models.TimeChange{},
	}

	for _, key := range set1.order {
		conn1 := set1.byKey[key]
		conn2, ok := set2.byKey[key]
		if !ok {
			report.Lost = append(report.Lost, conn1)
			continue
		}

		report.Common = append(report.Common, key)
		diff := conn2.GroundMinutes - conn1.GroundMinutes
		if diff == 0 {
			continue
		}
		report.TimeChanges = append(report.TimeChanges, models.TimeChange{
			Key:            key,
			Direction:      conn2.Direction,
			GroundMinutes1: conn1.GroundMinutes,
			GroundMinutes2: conn2.GroundMinutes,
			Arrival1:       conn1.HubArrival,
			Departure1:     conn1.HubDeparture,
			Arrival2:       conn2.HubArrival,
			Departure2:     conn2.HubDeparture,
			TimeDiff:       diff,
		})
	}

	for _, key := range set2.order {
		if _, ok := set1.byKey[key]; !ok {
			report.New = append(report.New, set2.byKey[key])
		}
	}

	report.Stats = models.ComparisonStats{
		TotalConn1:  len(set1.order),
		TotalConn2:  len(set2.order),
		Lost:        len(report.Lost),
		New:         len(report.New),
		Common:      len(report.Common),
		TimeChanged: len(report.TimeChanges),
	}

	return report
}
