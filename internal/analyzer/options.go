package analyzer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/hubconn/internal/models"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError identifies the option that prevents an analysis from starting
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Options holds the per-run thresholds and group definitions
type Options struct {
	Hub        string       `json:"hub"`
	MinConnect int          `json:"min_connect"`
	MaxConnect int          `json:"max_connect"`
	GroupA     models.Group `json:"group_a"`
	GroupB     models.Group `json:"group_b"`
}

// Validate rejects options that cannot produce a meaningful analysis.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Hub) == "" {
		return &ConfigError{Field: "hub", Reason: "is required"}
	}
	if o.MinConnect < 0 {
		return &ConfigError{Field: "min_connect", Reason: fmt.Sprintf("must be >= 0, got %d", o.MinConnect)}
	}
	if o.MinConnect > o.MaxConnect {
		return &ConfigError{
			Field:  "min_connect",
			Reason: fmt.Sprintf("(%d) must be <= max_connect (%d)", o.MinConnect, o.MaxConnect),
		}
	}
	if err := validateGroup("group_a", o.GroupA); err != nil {
		return err
	}
	return validateGroup("group_b", o.GroupB)
}

// Symmetric reports whether both groups select the same legs, in which case
// the reverse direction is skipped.
func (o Options) Symmetric() bool {
	return o.GroupA.Equal(o.GroupB)
}

func validateGroup(name string, g models.Group) error {
	if len(g.Routes) == 0 {
		return &ConfigError{Field: name + ".routes", Reason: "must select at least one route"}
	}
	if len(g.Carriers) == 0 {
		return &ConfigError{Field: name + ".carriers", Reason: "must select at least one carrier"}
	}
	return nil
}
