package analyzer

import (
	"reflect"
	"testing"

	"github.com/ppiankov/hubconn/internal/models"
)

func TestSummarize(t *testing.T) {
	connections := []models.Connection{
		{Direction: LabelAToB, InboundRoute: "US", InboundCarrier: "KE", OutboundRoute: "ASIA", OutboundCarrier: "KE", From: "JFK", To: "NRT", GroundMinutes: 50, Status: models.StatusConnected},
		{Direction: LabelAToB, InboundRoute: "US", InboundCarrier: "KE", OutboundRoute: "ASIA", OutboundCarrier: "KE", From: "LAX", To: "NRT", GroundMinutes: 75, Status: models.StatusConnected},
		{Direction: LabelAToB, InboundRoute: "US", InboundCarrier: "KE", OutboundRoute: "ASIA", OutboundCarrier: "OZ", From: "LAX", To: "BKK", GroundMinutes: 20, Status: models.StatusDisconnect},
		{Direction: LabelBToA, InboundRoute: "ASIA", InboundCarrier: "OZ", OutboundRoute: "US", OutboundCarrier: "KE", From: "BKK", To: "SEA", GroundMinutes: 100, Status: models.StatusConnected},
		{Direction: LabelBToA, InboundRoute: "ASIA", InboundCarrier: "KE", OutboundRoute: "US", OutboundCarrier: "KE", From: "NRT", To: "ICN", GroundMinutes: 5, Status: models.StatusDisconnect},
	}

	summary := Summarize(connections, "ICN")

	wantDirections := []models.DirectionCount{
		{Direction: LabelAToB, Connected: 2, Disconnect: 1},
		{Direction: LabelBToA, Connected: 1, Disconnect: 1},
	}
	if !reflect.DeepEqual(summary.ByDirection, wantDirections) {
		t.Fatalf("unexpected direction counts: %+v", summary.ByDirection)
	}

	wantMeans := []models.DirectionMean{
		{Direction: LabelAToB, MeanGroundMinutes: 62.5},
		{Direction: LabelBToA, MeanGroundMinutes: 100},
	}
	if !reflect.DeepEqual(summary.MeanConnected, wantMeans) {
		t.Fatalf("unexpected means: %+v", summary.MeanConnected)
	}

	if len(summary.ByRoutePair) != 4 {
		t.Fatalf("expected 4 route pairs, got %d", len(summary.ByRoutePair))
	}
	top := summary.ByRoutePair[0]
	if top.InboundRoute != "US" || top.OutboundCarrier != "KE" || top.Connected != 2 || top.Total != 2 {
		t.Fatalf("unexpected top pair: %+v", top)
	}
	for i := 1; i < len(summary.ByRoutePair); i++ {
		if summary.ByRoutePair[i-1].Connected < summary.ByRoutePair[i].Connected {
			t.Fatalf("route pairs not sorted by connected count: %+v", summary.ByRoutePair)
		}
	}

	wantAirports := []string{"JFK", "LAX", "SEA"}
	if !reflect.DeepEqual(summary.Airports, wantAirports) {
		t.Fatalf("expected airports %v, got %v", wantAirports, summary.Airports)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, "ICN")
	if summary.ByDirection == nil || summary.Airports == nil || summary.ByRoutePair == nil {
		t.Fatal("expected non-nil empty slices")
	}
	if len(summary.MeanConnected) != 0 {
		t.Fatalf("expected no means, got %+v", summary.MeanConnected)
	}
}
