package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/mandrykarina/GC/internal/formatter"
	"github.com/mandrykarina/GC/internal/service"
	"github.com/mandrykarina/GC/pkg/writer"
)

var reports = formatter.NewRegistry()

// newService builds and initializes the application service from the
// loaded configuration. Callers must Stop it.
func newService(ctx context.Context) (*service.Service, error) {
	svc, err := service.New(GetConfig(), GetLogger())
	if err != nil {
		return nil, err
	}
	if err := svc.Initialize(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// writeJSONOutput writes v as indented JSON to path, gzipped when path ends
// in .gz. An empty path is a no-op.
func writeJSONOutput[T any](path string, v T) error {
	if path == "" {
		return nil
	}
	var enc writer.Encoder[T] = writer.NewPrettyJSONWriter[T]()
	if strings.HasSuffix(path, ".gz") {
		enc = writer.NewGzipWriter[T]()
	}
	if err := writer.WriteFile(enc, v, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	GetLogger().Info("Results written to %s", path)
	return nil
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return lo.Compact(parts)
}

func parseInts(s string) ([]int, error) {
	out := make([]int, 0)
	for _, p := range splitList(s) {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}
