package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
)

// DefaultJSONFormatter implements JSON output functionality
type DefaultJSONFormatter struct{}

// NewDefaultJSONFormatter creates a new JSON formatter
func NewDefaultJSONFormatter() *DefaultJSONFormatter {
	return &DefaultJSONFormatter{}
}

// FormatSummary renders the summary document as indented JSON
func (f *DefaultJSONFormatter) FormatSummary(doc SummaryDocument) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// WriteSummaryJSON writes the summary of report to path
func (f *DefaultJSONFormatter) WriteSummaryJSON(report *validation.EvaluationReport, meta ReportMeta, path string) error {
	data, err := f.FormatSummary(BuildSummary(report, meta))
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0644)
}
