package reporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/pkg/config"
)

var connectionHeader = []string{
	"direction", "inbound_route", "outbound_route", "inbound_carrier", "outbound_carrier",
	"inbound_flight_no", "outbound_flight_no", "from", "via", "to",
	"inbound_flight", "outbound_flight", "hub_arr_time", "hub_dep_time", "conn_min", "status",
}

var legHeader = []string{"season", "carrier", "flight_no", "origin", "destination", "std", "sta", "route", "direction"}

// WriteCSV writes one CSV file per report section present in report.
func WriteCSV(report *models.Report, cfg *config.Config) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := map[string][][]string{}

	if report.Comparison == nil && report.Flights == nil {
		files["connections.csv"] = connectionRows(report.Connections)
	}
	if c := report.Comparison; c != nil {
		files["lost_connections.csv"] = connectionRows(c.Lost)
		files["new_connections.csv"] = connectionRows(c.New)
		files["time_changes.csv"] = timeChangeRows(c.TimeChanges)
	}
	if f := report.Flights; f != nil {
		files["removed_flights.csv"] = legRows(f.Removed)
		files["added_flights.csv"] = legRows(f.Added)
		files["retimed_flights.csv"] = retimedRows(f.Retimed)
	}

	for name, rows := range files {
		if err := writeCSVFile(filepath.Join(cfg.OutputDir, name), rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	return nil
}

func connectionRows(connections []models.Connection) [][]string {
	rows := make([][]string, 0, len(connections)+1)
	rows = append(rows, connectionHeader)
	for _, c := range connections {
		rows = append(rows, []string{
			c.Direction, c.InboundRoute, c.OutboundRoute, c.InboundCarrier, c.OutboundCarrier,
			c.InboundFlight, c.OutboundFlight, c.From, c.Via, c.To,
			c.InboundSummary, c.OutboundSummary, c.HubArrival, c.HubDeparture,
			strconv.Itoa(c.GroundMinutes), string(c.Status),
		})
	}
	return rows
}

func timeChangeRows(changes []models.TimeChange) [][]string {
	rows := [][]string{{
		"inbound_flight_no", "outbound_flight_no", "from", "to", "direction",
		"arr_time_1", "dep_time_1", "conn_min_1", "arr_time_2", "dep_time_2", "conn_min_2", "time_diff",
	}}
	for _, tc := range changes {
		rows = append(rows, []string{
			tc.Key.InboundFlight, tc.Key.OutboundFlight, tc.Key.Origin, tc.Key.Destination, tc.Direction,
			tc.Arrival1, tc.Departure1, strconv.Itoa(tc.GroundMinutes1),
			tc.Arrival2, tc.Departure2, strconv.Itoa(tc.GroundMinutes2),
			strconv.Itoa(tc.TimeDiff),
		})
	}
	return rows
}

func legRows(legs []models.FlightLeg) [][]string {
	rows := [][]string{legHeader}
	for _, l := range legs {
		rows = append(rows, []string{
			l.Season, l.Carrier, l.FlightNo, l.Origin, l.Destination, l.Departure, l.Arrival, l.Route, string(l.Direction),
		})
	}
	return rows
}

func retimedRows(retimed []models.RetimedFlight) [][]string {
	rows := [][]string{{"carrier", "flight_no", "origin", "destination", "route", "direction", "std_old", "std_new", "sta_old", "sta_new"}}
	for _, r := range retimed {
		rows = append(rows, []string{
			r.Key.Carrier, r.Key.FlightNo, r.Key.Origin, r.Key.Destination, r.Route, string(r.Direction),
			r.OldDeparture, r.NewDeparture, r.OldArrival, r.NewArrival,
		})
	}
	return rows
}
