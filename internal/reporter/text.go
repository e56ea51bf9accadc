package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/pkg/config"
)

const (
	textANSIReset = "\x1b[0m"
	textANSIBold  = "\x1b[1m"

	// textMaxRows caps each listing; the JSON report always has everything.
	textMaxRows = 200
)

// WriteText writes a human-readable text report to report.txt and stdout.
func WriteText(report *models.Report, cfg *config.Config) error {
	return writeText(report, cfg, os.Stdout)
}

func writeText(report *models.Report, cfg *config.Config, out io.Writer) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if out == nil {
		return fmt.Errorf("writer is nil")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rendered := renderTextReport(report, supportsANSI(out))
	outputPath := filepath.Join(cfg.OutputDir, "report.txt")

	if err := os.WriteFile(outputPath, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write report.txt: %w", err)
	}

	if _, err := io.WriteString(out, rendered); err != nil {
		return fmt.Errorf("failed to write text report to output: %w", err)
	}

	return nil
}

func renderTextReport(report *models.Report, useANSI bool) string {
	var b strings.Builder

	generatedAt := strings.TrimSpace(report.Timestamp)
	if generatedAt == "" {
		if !report.Metadata.GeneratedAt.IsZero() {
			generatedAt = report.Metadata.GeneratedAt.UTC().Format(time.RFC3339)
		} else {
			generatedAt = "unknown"
		}
	}

	md := report.Metadata
	writeTextSectionHeader(&b, "Hub Connection Report", useANSI)
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt)
	fmt.Fprintf(&b, "Mode: %s\n", textValue(md.Mode))
	if md.Mode != "flights" {
		fmt.Fprintf(&b, "Hub: %s\n", textValue(md.Hub))
		fmt.Fprintf(&b, "Connection window: %d-%d min\n", md.MinConnect, md.MaxConnect)
		fmt.Fprintf(&b, "Group A: %s\n", formatGroup(md.GroupA))
		fmt.Fprintf(&b, "Group B: %s\n", formatGroup(md.GroupB))
	}
	fmt.Fprintf(&b, "Snapshots: %s\n", textValue(strings.Join(md.Snapshots, " -> ")))
	fmt.Fprintf(&b, "Legs analyzed: %d (skipped rows: %d)\n", md.LegsAnalyzed, md.SkippedRows)
	if md.Cached {
		b.WriteString("Result served from cache\n")
	}
	b.WriteString("\n")

	if report.Summary != nil {
		renderSummary(&b, report.Summary, useANSI)
	}

	if report.Comparison == nil && report.Flights == nil {
		writeTextSectionHeader(&b, "Connected Pairs", useANSI)
		renderConnections(&b, connectedOnly(report.Connections), "No connected pairs.")
		b.WriteString("\n")
	}

	if c := report.Comparison; c != nil {
		writeTextSectionHeader(&b, "Connection Changes", useANSI)
		fmt.Fprintf(&b, "Connected before: %d\n", c.Stats.TotalConn1)
		fmt.Fprintf(&b, "Connected after: %d\n", c.Stats.TotalConn2)
		fmt.Fprintf(&b, "Lost: %d  New: %d  Common: %d  Retimed: %d\n", c.Stats.Lost, c.Stats.New, c.Stats.Common, c.Stats.TimeChanged)
		b.WriteString("\n")

		writeTextSectionHeader(&b, "Lost Connections", useANSI)
		renderConnections(&b, c.Lost, "No lost connections.")
		b.WriteString("\n")

		writeTextSectionHeader(&b, "New Connections", useANSI)
		renderConnections(&b, c.New, "No new connections.")
		b.WriteString("\n")

		writeTextSectionHeader(&b, "Connection Time Changes", useANSI)
		renderTimeChanges(&b, c.TimeChanges)
		b.WriteString("\n")
	}

	if f := report.Flights; f != nil {
		writeTextSectionHeader(&b, "Flight Changes", useANSI)
		fmt.Fprintf(&b, "Flights before: %d  after: %d\n", f.Stats.Total1, f.Stats.Total2)
		fmt.Fprintf(&b, "Removed: %d  Added: %d  Common: %d  Retimed: %d\n", f.Stats.Removed, f.Stats.Added, f.Stats.Common, f.Stats.TimeChanged)
		b.WriteString("\n")

		writeTextSectionHeader(&b, "Removed Flights", useANSI)
		renderLegs(&b, f.Removed, "No removed flights.")
		b.WriteString("\n")

		writeTextSectionHeader(&b, "Added Flights", useANSI)
		renderLegs(&b, f.Added, "No added flights.")
		b.WriteString("\n")

		writeTextSectionHeader(&b, "Retimed Flights", useANSI)
		renderRetimed(&b, f.Retimed)
		b.WriteString("\n")
	}

	if report.Suppressed > 0 {
		fmt.Fprintf(&b, "Baseline suppressed %d known findings.\n", report.Suppressed)
	}

	return b.String()
}

func renderSummary(b *strings.Builder, summary *models.AnalysisSummary, useANSI bool) {
	means := make(map[string]float64, len(summary.MeanConnected))
	for _, m := range summary.MeanConnected {
		means[m.Direction] = m.MeanGroundMinutes
	}

	writeTextSectionHeader(b, "Summary", useANSI)
	if len(summary.ByDirection) == 0 {
		b.WriteString("No connection candidates.\n")
	} else {
		b.WriteString("DIRECTION              CONNECTED DISCONNECT MEAN_MIN\n")
		b.WriteString("-----------------------------------------------------\n")
		for _, d := range summary.ByDirection {
			mean := "n/a"
			if v, ok := means[d.Direction]; ok {
				mean = fmt.Sprintf("%.1f", v)
			}
			fmt.Fprintf(b, "%-22s %-9d %-10d %s\n", truncateTextValue(d.Direction, 22), d.Connected, d.Disconnect, mean)
		}
	}
	b.WriteString("\n")

	if len(summary.ByRoutePair) > 0 {
		writeTextSectionHeader(b, "Route Pairs", useANSI)
		b.WriteString("INBOUND              OUTBOUND             CONNECTED DISCONNECT TOTAL\n")
		b.WriteString("--------------------------------------------------------------------\n")
		for i, p := range summary.ByRoutePair {
			if i == textMaxRows {
				fmt.Fprintf(b, "... %d more\n", len(summary.ByRoutePair)-textMaxRows)
				break
			}
			fmt.Fprintf(b, "%-20s %-20s %-9d %-10d %d\n",
				truncateTextValue(p.InboundRoute+"/"+p.InboundCarrier, 20),
				truncateTextValue(p.OutboundRoute+"/"+p.OutboundCarrier, 20),
				p.Connected, p.Disconnect, p.Total,
			)
		}
		b.WriteString("\n")
	}

	if len(summary.Airports) > 0 {
		fmt.Fprintf(b, "Airports served: %s\n\n", strings.Join(summary.Airports, ", "))
	}
}

func renderConnections(b *strings.Builder, connections []models.Connection, empty string) {
	if len(connections) == 0 {
		b.WriteString(empty + "\n")
		return
	}

	b.WriteString("DIRECTION              INBOUND                          OUTBOUND                         MIN   STATUS\n")
	b.WriteString("-------------------------------------------------------------------------------------------------------\n")
	for i, conn := range connections {
		if i == textMaxRows {
			fmt.Fprintf(b, "... %d more\n", len(connections)-textMaxRows)
			break
		}
		fmt.Fprintf(b, "%-22s %-32s %-32s %-5d %s\n",
			truncateTextValue(conn.Direction, 22),
			truncateTextValue(conn.InboundSummary, 32),
			truncateTextValue(conn.OutboundSummary, 32),
			conn.GroundMinutes,
			conn.Status,
		)
	}
}

func renderTimeChanges(b *strings.Builder, changes []models.TimeChange) {
	if len(changes) == 0 {
		b.WriteString("No connection time changes.\n")
		return
	}

	sorted := append([]models.TimeChange(nil), changes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return abs(sorted[i].TimeDiff) > abs(sorted[j].TimeDiff)
	})

	b.WriteString("CONNECTION                           BEFORE        AFTER         DIFF\n")
	b.WriteString("---------------------------------------------------------------------\n")
	for i, tc := range sorted {
		if i == textMaxRows {
			fmt.Fprintf(b, "... %d more\n", len(sorted)-textMaxRows)
			break
		}
		fmt.Fprintf(b, "%-36s %-13s %-13s %+d\n",
			truncateTextValue(fmt.Sprintf("%s %s->%s %s", tc.Key.Origin, tc.Key.InboundFlight, tc.Key.OutboundFlight, tc.Key.Destination), 36),
			fmt.Sprintf("%s/%s %d", tc.Arrival1, tc.Departure1, tc.GroundMinutes1),
			fmt.Sprintf("%s/%s %d", tc.Arrival2, tc.Departure2, tc.GroundMinutes2),
			tc.TimeDiff,
		)
	}
}

func renderLegs(b *strings.Builder, legs []models.FlightLeg, empty string) {
	if len(legs) == 0 {
		b.WriteString(empty + "\n")
		return
	}

	b.WriteString("FLIGHT   ROUTE       SECTOR    STD    STA    DIRECTION\n")
	b.WriteString("-------------------------------------------------------\n")
	for i, leg := range legs {
		if i == textMaxRows {
			fmt.Fprintf(b, "... %d more\n", len(legs)-textMaxRows)
			break
		}
		fmt.Fprintf(b, "%-8s %-11s %-9s %-6s %-6s %s\n",
			truncateTextValue(leg.FlightID(), 8),
			truncateTextValue(leg.Route, 11),
			leg.Origin+"-"+leg.Destination,
			leg.Departure,
			leg.Arrival,
			leg.Direction,
		)
	}
}

func renderRetimed(b *strings.Builder, retimed []models.RetimedFlight) {
	if len(retimed) == 0 {
		b.WriteString("No retimed flights.\n")
		return
	}

	b.WriteString("FLIGHT   SECTOR    STD            STA\n")
	b.WriteString("--------------------------------------------\n")
	for i, r := range retimed {
		if i == textMaxRows {
			fmt.Fprintf(b, "... %d more\n", len(retimed)-textMaxRows)
			break
		}
		fmt.Fprintf(b, "%-8s %-9s %-14s %s\n",
			truncateTextValue(r.Key.Carrier+r.Key.FlightNo, 8),
			r.Key.Origin+"-"+r.Key.Destination,
			formatChange(r.OldDeparture, r.NewDeparture),
			formatChange(r.OldArrival, r.NewArrival),
		)
	}
}

func connectedOnly(connections []models.Connection) []models.Connection {
	connected := make([]models.Connection, 0, len(connections))
	for _, conn := range connections {
		if conn.Connected() {
			connected = append(connected, conn)
		}
	}
	return connected
}

func formatChange(before, after string) string {
	if before == after {
		return before
	}
	return before + ">" + after
}

func formatGroup(g models.Group) string {
	return fmt.Sprintf("routes=%s carriers=%s", textValue(strings.Join(g.Routes, ",")), textValue(strings.Join(g.Carriers, ",")))
}

func textValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "unknown"
	}
	return value
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func writeTextSectionHeader(b *strings.Builder, title string, useANSI bool) {
	header := title
	if useANSI {
		header = textANSIBold + title + textANSIReset
	}
	fmt.Fprintf(b, "%s\n", header)
	fmt.Fprintf(b, "%s\n", strings.Repeat("-", len(title)))
}

func supportsANSI(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	info, err := file.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

func truncateTextValue(value string, width int) string {
	runes := []rune(value)
	if width <= 0 || len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
