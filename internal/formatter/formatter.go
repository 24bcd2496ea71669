// Package formatter prints simulation reports.
package formatter

import (
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/utils"
)

// ReportKind identifies the report types the registry can print.
type ReportKind string

const (
	KindResult     ReportKind = "result"
	KindComparison ReportKind = "comparison"
	KindBench      ReportKind = "bench"
	KindUnknown    ReportKind = "unknown"
)

// KindOf returns the report kind of v.
func KindOf(v interface{}) ReportKind {
	switch v.(type) {
	case *model.GCResult, model.GCResult:
		return KindResult
	case *model.Comparison, model.Comparison:
		return KindComparison
	case []model.BenchCase:
		return KindBench
	default:
		return KindUnknown
	}
}

// ResultFormatter prints one kind of report.
type ResultFormatter interface {
	// Format outputs the report to the logger.
	Format(v interface{}, log utils.Logger)

	// FormatSummary returns a summary map for serialization.
	FormatSummary(v interface{}) map[string]interface{}

	// SupportedKinds returns the report kinds this formatter handles.
	SupportedKinds() []ReportKind
}

// Registry manages formatter instances.
type Registry struct {
	formatters map[ReportKind]ResultFormatter
	fallback   ResultFormatter
}

// NewRegistry creates a new formatter registry with default formatters.
func NewRegistry() *Registry {
	r := &Registry{
		formatters: make(map[ReportKind]ResultFormatter),
		fallback:   &DefaultFormatter{},
	}

	r.Register(&GCResultFormatter{})
	r.Register(&ComparisonFormatter{})
	r.Register(&BenchFormatter{})

	return r
}

// Register registers a formatter.
func (r *Registry) Register(f ResultFormatter) {
	for _, k := range f.SupportedKinds() {
		r.formatters[k] = f
	}
}

// Get returns the formatter for a report kind.
func (r *Registry) Get(kind ReportKind) ResultFormatter {
	if f, ok := r.formatters[kind]; ok {
		return f
	}
	return r.fallback
}

// Format prints v using the matching formatter.
func (r *Registry) Format(v interface{}, log utils.Logger) {
	if v == nil {
		return
	}
	r.Get(KindOf(v)).Format(v, log)
}

// FormatSummary returns a summary map using the matching formatter.
func (r *Registry) FormatSummary(v interface{}) map[string]interface{} {
	if v == nil {
		return nil
	}
	return r.Get(KindOf(v)).FormatSummary(v)
}
