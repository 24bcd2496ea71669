package formatter

import (
	"fmt"

	"github.com/mandrykarina/GC/pkg/utils"
)

// DefaultFormatter is a fallback formatter for unknown report types.
type DefaultFormatter struct{}

// SupportedKinds returns nil as this is a fallback formatter.
func (f *DefaultFormatter) SupportedKinds() []ReportKind {
	return nil
}

// Format outputs a generic report to the logger.
func (f *DefaultFormatter) Format(v interface{}, log utils.Logger) {
	log.Info("=== Report ===")
	log.Info("  %s", truncateString(fmt.Sprintf("%+v", v), 200))
}

// FormatSummary returns a summary map for serialization.
func (f *DefaultFormatter) FormatSummary(v interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":  fmt.Sprintf("%T", v),
		"value": v,
	}
}
