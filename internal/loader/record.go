package loader

import (
	"strings"

	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/pkg/config"
)

// record is one raw schedule row after column normalization
type record struct {
	Season    string
	Carrier   string
	FlightNo  string
	Origin    string
	Dest      string
	STD       string
	STA       string
	Direction string
	Route     string
}

// ParseDirection maps a hub-direction indicator onto a Direction. The
// configured labels ("To ICN"/"From ICN" for hub ICN unless overridden) and
// the literal INBOUND/OUTBOUND are accepted, case-insensitively.
func ParseDirection(value string, cfg *config.Config) (models.Direction, bool) {
	v := strings.TrimSpace(value)
	switch {
	case strings.EqualFold(v, cfg.InboundDirection()), strings.EqualFold(v, string(models.DirectionInbound)):
		return models.DirectionInbound, true
	case strings.EqualFold(v, cfg.OutboundDirection()), strings.EqualFold(v, string(models.DirectionOutbound)):
		return models.DirectionOutbound, true
	}
	return "", false
}

// collector accumulates validated legs and counts rejected rows.
type collector struct {
	cfg      *config.Config
	legs     []models.FlightLeg
	skipped  int
	excluded int
}

func newCollector(cfg *config.Config) *collector {
	return &collector{cfg: cfg, legs: make([]models.FlightLeg, 0)}
}

func (c *collector) add(rec record) error {
	direction, ok := ParseDirection(rec.Direction, c.cfg)
	if !ok {
		c.skipped++
		return errInvalidDirection(rec.Direction)
	}

	leg := models.FlightLeg{
		Season:      strings.TrimSpace(rec.Season),
		Carrier:     strings.TrimSpace(rec.Carrier),
		FlightNo:    strings.TrimSpace(rec.FlightNo),
		Origin:      strings.TrimSpace(rec.Origin),
		Destination: strings.TrimSpace(rec.Dest),
		Departure:   strings.TrimSpace(rec.STD),
		Arrival:     strings.TrimSpace(rec.STA),
		Route:       strings.TrimSpace(rec.Route),
		Direction:   direction,
	}
	if err := leg.Validate(); err != nil {
		c.skipped++
		return err
	}

	if c.cfg.IsLegExcluded(leg.Carrier, leg.Origin, leg.Destination) {
		c.excluded++
		return nil
	}

	c.legs = append(c.legs, leg)
	return nil
}

func (c *collector) snapshot(name string) *models.Snapshot {
	snap := models.NewSnapshot(name, c.legs)
	snap.Skipped = c.skipped
	return snap
}
