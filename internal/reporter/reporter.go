package reporter

import (
	"fmt"
	"strings"

	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/pkg/config"
)

// Supported output formats
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatCSV  = "csv"
)

// Reporter interface for generating reports
type Reporter interface {
	Generate(report *models.Report) error
}

// reporter implements the Reporter interface
type reporter struct {
	config *config.Config
}

// New creates a new reporter instance
func New(cfg *config.Config) Reporter {
	return &reporter{
		config: cfg,
	}
}

// ValidateFormat rejects formats no writer exists for.
func ValidateFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, FormatText, FormatCSV:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be json, text, or csv)", format)
	}
}

// Generate writes report in the configured format. JSON is always written
// alongside text and CSV output so the full result stays machine-readable.
func (r *reporter) Generate(report *models.Report) error {
	if err := ValidateFormat(r.config.Format); err != nil {
		return err
	}

	if err := WriteJSON(report, r.config); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(r.config.Format)) {
	case FormatText:
		return WriteText(report, r.config)
	case FormatCSV:
		return WriteCSV(report, r.config)
	}
	return nil
}
