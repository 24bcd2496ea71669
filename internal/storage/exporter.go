package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/mandrykarina/GC/internal/gc"
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/utils"
	"github.com/mandrykarina/GC/pkg/writer"
)

const (
	reportFile = "report.json"
	eventsFile = "events.ndjson.gz"
	benchFile  = "bench.json.gz"
)

// EventLog buffers collector events as gzipped JSON lines. It is safe for
// use as a simulation event recorder.
type EventLog struct {
	buf    bytes.Buffer
	lines  *writer.LinesWriter[gc.Event]
	closed bool
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	l := &EventLog{}
	l.lines = writer.NewLinesWriter[gc.Event](&l.buf, true)
	return l
}

// Append records ev.
func (l *EventLog) Append(ev gc.Event) error {
	if l.closed {
		return fmt.Errorf("event log is closed")
	}
	return l.lines.Append(ev)
}

// Count returns the number of recorded events.
func (l *EventLog) Count() int { return l.lines.Count() }

// Bytes flushes the log and returns the compressed stream. No events can be
// appended afterwards.
func (l *EventLog) Bytes() ([]byte, error) {
	if !l.closed {
		l.closed = true
		if err := l.lines.Close(); err != nil {
			return nil, err
		}
	}
	return l.buf.Bytes(), nil
}

// Exporter writes run artifacts to a Storage under
// <prefix>/<run id>/.
type Exporter struct {
	store  Storage
	prefix string
	log    utils.Logger
}

// NewExporter creates an exporter. An empty prefix stores runs at the root.
func NewExporter(store Storage, prefix string, log utils.Logger) *Exporter {
	if log == nil {
		log = &utils.NullLogger{}
	}
	return &Exporter{store: store, prefix: strings.Trim(prefix, "/"), log: log}
}

// Storage returns the underlying store.
func (e *Exporter) Storage() Storage { return e.store }

// ReportKey returns the key of the comparison report for runID.
func (e *Exporter) ReportKey(runID string) string { return e.key(runID, reportFile) }

// EventsKey returns the key of the event log for runID.
func (e *Exporter) EventsKey(runID string) string { return e.key(runID, eventsFile) }

// BenchKey returns the key of the bench results for name.
func (e *Exporter) BenchKey(name string) string { return e.key("bench", name, benchFile) }

func (e *Exporter) key(parts ...string) string {
	if e.prefix != "" {
		parts = append([]string{e.prefix}, parts...)
	}
	return path.Join(parts...)
}

// ExportReport stores cmp as pretty JSON and returns its key.
func (e *Exporter) ExportReport(ctx context.Context, cmp *model.Comparison) (string, error) {
	if cmp == nil || cmp.RunID == "" {
		return "", fmt.Errorf("comparison has no run id")
	}
	enc := writer.NewPrettyJSONWriter[*model.Comparison]()
	data, err := writer.Bytes[*model.Comparison](enc, cmp)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := e.ReportKey(cmp.RunID)
	if err := e.store.Upload(ctx, key, bytes.NewReader(data), enc.ContentType()); err != nil {
		return "", err
	}
	e.log.Info("Exported report for run %s to %s", cmp.RunID, e.store.GetURL(key))
	return key, nil
}

// ExportEvents stores the event log of runID and returns its key.
func (e *Exporter) ExportEvents(ctx context.Context, runID string, events *EventLog) (string, error) {
	data, err := events.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to flush event log: %w", err)
	}
	key := e.EventsKey(runID)
	if err := e.store.Upload(ctx, key, bytes.NewReader(data), "application/gzip"); err != nil {
		return "", err
	}
	e.log.Debug("Exported %d events for run %s", events.Count(), runID)
	return key, nil
}

// ExportBench stores gzipped bench results under name and returns the key.
func (e *Exporter) ExportBench(ctx context.Context, name string, cases []model.BenchCase) (string, error) {
	enc := writer.NewGzipWriterWithLevel[[]model.BenchCase](gzip.BestCompression)
	data, err := writer.Bytes[[]model.BenchCase](enc, cases)
	if err != nil {
		return "", fmt.Errorf("failed to encode bench results: %w", err)
	}
	key := e.BenchKey(name)
	if err := e.store.Upload(ctx, key, bytes.NewReader(data), enc.ContentType()); err != nil {
		return "", err
	}
	return key, nil
}

// LoadReport reads back the report of runID.
func (e *Exporter) LoadReport(ctx context.Context, runID string) (*model.Comparison, error) {
	rc, err := e.store.Download(ctx, e.ReportKey(runID))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var cmp model.Comparison
	if err := json.NewDecoder(rc).Decode(&cmp); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", runID, err)
	}
	return &cmp, nil
}
