package analyzer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ppiankov/hubconn/internal/models"
)

func inbound(carrier, number, origin, sta, route string) models.FlightLeg {
	return models.FlightLeg{
		Carrier:     carrier,
		FlightNo:    number,
		Origin:      origin,
		Destination: "ICN",
		Departure:   "08:00",
		Arrival:     sta,
		Route:       route,
		Direction:   models.DirectionInbound,
	}
}

func outbound(carrier, number, dest, std, route string) models.FlightLeg {
	return models.FlightLeg{
		Carrier:     carrier,
		FlightNo:    number,
		Origin:      "ICN",
		Destination: dest,
		Departure:   std,
		Arrival:     "23:00",
		Route:       route,
		Direction:   models.DirectionOutbound,
	}
}

func testOptions() Options {
	return Options{
		Hub:        "ICN",
		MinConnect: 45,
		MaxConnect: 1440,
		GroupA:     models.Group{Routes: []string{"US"}, Carriers: []string{"KE"}},
		GroupB:     models.Group{Routes: []string{"ASIA"}, Carriers: []string{"KE"}},
	}
}

func TestAnalyzeSingleConnection(t *testing.T) {
	legs := []models.FlightLeg{
		inbound("KE", "081", "JFK", "16:30", "US"),
		outbound("KE", "123", "NRT", "17:20", "ASIA"),
	}

	a, err := New(testOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	connections := a.Analyze(legs)
	if len(connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(connections))
	}

	conn := connections[0]
	if conn.GroundMinutes != 50 {
		t.Fatalf("expected 50 minutes ground time, got %d", conn.GroundMinutes)
	}
	if conn.Status != models.StatusConnected {
		t.Fatalf("expected Connected, got %s", conn.Status)
	}
	if conn.Direction != LabelAToB {
		t.Fatalf("expected direction %q, got %q", LabelAToB, conn.Direction)
	}
	if conn.InboundFlight != "KE081" || conn.OutboundFlight != "KE123" {
		t.Fatalf("unexpected flight ids %s/%s", conn.InboundFlight, conn.OutboundFlight)
	}
	if conn.From != "JFK" || conn.Via != "ICN" || conn.To != "NRT" {
		t.Fatalf("unexpected routing %s-%s-%s", conn.From, conn.Via, conn.To)
	}
	if conn.InboundSummary != "[KE081] JFK->ICN (Arr 16:30)" {
		t.Fatalf("unexpected inbound summary %q", conn.InboundSummary)
	}
	if conn.OutboundSummary != "[KE123] ICN->NRT (Dep 17:20)" {
		t.Fatalf("unexpected outbound summary %q", conn.OutboundSummary)
	}
	if conn.ArrivalMinutes != 990 || conn.DepartureMinutes != 1040 {
		t.Fatalf("unexpected minutes arr=%d dep=%d", conn.ArrivalMinutes, conn.DepartureMinutes)
	}
}

func TestMatchCrossJoinCompleteness(t *testing.T) {
	var in, out []models.FlightLeg
	for i := 0; i < 4; i++ {
		in = append(in, inbound("KE", fmt.Sprintf("%03d", i), "LAX", fmt.Sprintf("%02d:00", 6+i), "US"))
	}
	for i := 0; i < 3; i++ {
		out = append(out, outbound("OZ", fmt.Sprintf("%03d", 700+i), "BKK", fmt.Sprintf("%02d:30", 10+i), "ASIA"))
	}

	connections := Match(in, out, 45, 300, LabelAToB, "ICN")
	if len(connections) != 12 {
		t.Fatalf("expected 4x3=12 candidates, got %d", len(connections))
	}

	// inbound-major order
	for i, conn := range connections {
		wantIn := in[i/3].FlightID()
		wantOut := out[i%3].FlightID()
		if conn.InboundFlight != wantIn || conn.OutboundFlight != wantOut {
			t.Fatalf("candidate %d: expected %s->%s, got %s->%s", i, wantIn, wantOut, conn.InboundFlight, conn.OutboundFlight)
		}
	}
}

func TestMatchDropsUnparseableLegs(t *testing.T) {
	in := []models.FlightLeg{
		inbound("KE", "001", "LAX", "10:00", "US"),
		inbound("KE", "002", "SFO", "bad", "US"),
	}
	out := []models.FlightLeg{
		outbound("KE", "101", "BKK", "12:00", "ASIA"),
		outbound("KE", "102", "SGN", "25:99", "ASIA"),
		outbound("KE", "103", "HAN", "13:00", "ASIA"),
	}

	connections := Match(in, out, 0, 1440, LabelAToB, "ICN")
	if len(connections) != 2 {
		t.Fatalf("expected 2 candidates after dropping unparseable legs, got %d", len(connections))
	}
	for _, conn := range connections {
		if conn.InboundFlight == "KE002" || conn.OutboundFlight == "KE102" {
			t.Fatalf("unexpected candidate with unparseable leg: %+v", conn)
		}
	}
}

func TestMatchDoesNotMutateInput(t *testing.T) {
	in := []models.FlightLeg{inbound("KE", "001", "LAX", "10:00", "US")}
	out := []models.FlightLeg{outbound("KE", "101", "BKK", "12:00", "ASIA")}
	inCopy := append([]models.FlightLeg(nil), in...)
	outCopy := append([]models.FlightLeg(nil), out...)

	_ = Match(in, out, 45, 300, LabelAToB, "ICN")

	if in[0] != inCopy[0] || out[0] != outCopy[0] {
		t.Fatal("expected input legs to remain unchanged")
	}
}

func TestMatchEmptySide(t *testing.T) {
	in := []models.FlightLeg{inbound("KE", "001", "LAX", "10:00", "US")}
	if got := Match(in, nil, 45, 300, LabelAToB, "ICN"); len(got) != 0 {
		t.Fatalf("expected no candidates without outbound legs, got %d", len(got))
	}
	if got := Match(nil, in, 45, 300, LabelAToB, "ICN"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result without inbound legs, got %v", got)
	}
}

func TestAnalyzeBidirectionalSymmetricGroupSkipsReverse(t *testing.T) {
	legs := []models.FlightLeg{
		inbound("KE", "651", "BKK", "06:10", "ASIA"),
		inbound("KE", "681", "SGN", "06:40", "ASIA"),
		outbound("KE", "652", "BKK", "09:00", "ASIA"),
		outbound("KE", "682", "SGN", "10:20", "ASIA"),
	}
	opts := testOptions()
	opts.GroupA = models.Group{Routes: []string{"ASIA"}, Carriers: []string{"KE"}}
	opts.GroupB = models.Group{Routes: []string{"ASIA"}, Carriers: []string{"KE"}}

	connections := AnalyzeBidirectional(legs, opts)
	if len(connections) != 4 {
		t.Fatalf("expected 4 candidates from a single pass, got %d", len(connections))
	}
	for _, conn := range connections {
		if conn.Direction != LabelAToB {
			t.Fatalf("expected only %q candidates, got %q", LabelAToB, conn.Direction)
		}
	}
}

func TestAnalyzeBidirectionalBothDirections(t *testing.T) {
	legs := []models.FlightLeg{
		inbound("KE", "081", "JFK", "16:30", "US"),
		outbound("KE", "123", "NRT", "17:20", "ASIA"),
		inbound("KE", "124", "NRT", "09:00", "ASIA"),
		outbound("KE", "082", "JFK", "10:00", "US"),
		outbound("OZ", "222", "LAX", "11:00", "US"),
	}

	connections := AnalyzeBidirectional(legs, testOptions())
	if len(connections) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(connections))
	}
	if connections[0].Direction != LabelAToB || connections[1].Direction != LabelBToA {
		t.Fatalf("expected A->B then B->A, got %q then %q", connections[0].Direction, connections[1].Direction)
	}
	reverse := connections[1]
	if reverse.InboundFlight != "KE124" || reverse.OutboundFlight != "KE082" || reverse.GroundMinutes != 60 {
		t.Fatalf("unexpected reverse candidate %+v", reverse)
	}
}

func TestAnalyzeBidirectionalEmptySubset(t *testing.T) {
	legs := []models.FlightLeg{
		outbound("KE", "123", "NRT", "17:20", "ASIA"),
	}
	if got := AnalyzeBidirectional(legs, testOptions()); len(got) != 0 {
		t.Fatalf("expected no candidates without inbound legs, got %d", len(got))
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(o *Options)
		wantField string
	}{
		{name: "min_above_max", mutate: func(o *Options) { o.MinConnect, o.MaxConnect = 300, 60 }, wantField: "min_connect"},
		{name: "negative_min", mutate: func(o *Options) { o.MinConnect = -5 }, wantField: "min_connect"},
		{name: "empty_group_a_routes", mutate: func(o *Options) { o.GroupA.Routes = nil }, wantField: "group_a.routes"},
		{name: "empty_group_b_carriers", mutate: func(o *Options) { o.GroupB.Carriers = []string{} }, wantField: "group_b.carriers"},
		{name: "missing_hub", mutate: func(o *Options) { o.Hub = " " }, wantField: "hub"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := testOptions()
			tc.mutate(&opts)

			_, err := New(opts)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tc.wantField {
				t.Fatalf("expected ConfigError on %q, got %v", tc.wantField, err)
			}
		})
	}
}

func TestNewAcceptsEqualThresholds(t *testing.T) {
	opts := testOptions()
	opts.MinConnect, opts.MaxConnect = 60, 60
	if _, err := New(opts); err != nil {
		t.Fatalf("expected equal thresholds to be valid, got %v", err)
	}
}
