package analyzer

import (
	"log/slog"

	"github.com/ppiankov/hubconn/internal/models"
)

// Direction labels attached to each pass
const (
	LabelAToB = "Group A -> Group B"
	LabelBToA = "Group B -> Group A"
)

// Analyzer runs bidirectional connection analysis with validated options.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	opts Options
}

// New validates opts and returns an analyzer bound to them.
func New(opts Options) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{opts: opts}, nil
}

// Options returns the options the analyzer was created with.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze classifies every connection through the hub between the two groups.
func (a *Analyzer) Analyze(legs []models.FlightLeg) []models.Connection {
	connections := AnalyzeBidirectional(legs, a.opts)

	slog.Debug("analysis complete",
		slog.Int("legs", len(legs)),
		slog.Int("connections", len(connections)),
	)

	return connections
}

// AnalyzeBidirectional matches group A arrivals against group B departures,
// then group B arrivals against group A departures. The second pass is skipped
// when both groups select the same routes and carriers.
func AnalyzeBidirectional(legs []models.FlightLeg, opts Options) []models.Connection {
	connections := Match(
		Filter(legs, opts.GroupA, models.DirectionInbound),
		Filter(legs, opts.GroupB, models.DirectionOutbound),
		opts.MinConnect, opts.MaxConnect, LabelAToB, opts.Hub,
	)

	if opts.Symmetric() {
		return connections
	}

	return append(connections, Match(
		Filter(legs, opts.GroupB, models.DirectionInbound),
		Filter(legs, opts.GroupA, models.DirectionOutbound),
		opts.MinConnect, opts.MaxConnect, LabelBToA, opts.Hub,
	)...)
}

// Filter returns the legs in group g travelling in direction dir, in input order.
func Filter(legs []models.FlightLeg, g models.Group, dir models.Direction) []models.FlightLeg {
	selected := make([]models.FlightLeg, 0)
	for _, leg := range legs {
		if leg.Direction == dir && g.Contains(leg) {
			selected = append(selected, leg)
		}
	}
	return selected
}
