// Package writer encodes run reports and event logs as JSON or gzipped JSON.
package writer

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Encoder writes a value of type T in one format.
type Encoder[T any] interface {
	Write(data T, w io.Writer) error
	// Extension is the file suffix for the format, including the dot.
	Extension() string
	ContentType() string
}

// JSONWriter writes data as JSON.
type JSONWriter[T any] struct {
	// Indent is the per-level indentation. Empty means compact output.
	Indent string
}

// NewJSONWriter creates a new JSON writer with compact output.
func NewJSONWriter[T any]() *JSONWriter[T] {
	return &JSONWriter[T]{}
}

// NewPrettyJSONWriter creates a JSON writer with pretty printing.
func NewPrettyJSONWriter[T any]() *JSONWriter[T] {
	return &JSONWriter[T]{Indent: "  "}
}

// Write writes the data as JSON to w.
func (jw *JSONWriter[T]) Write(data T, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if jw.Indent != "" {
		encoder.SetIndent("", jw.Indent)
	}
	return encoder.Encode(data)
}

// Extension returns ".json".
func (jw *JSONWriter[T]) Extension() string { return ".json" }

// ContentType returns the JSON media type.
func (jw *JSONWriter[T]) ContentType() string { return "application/json" }

// GzipWriter writes data as gzipped JSON.
type GzipWriter[T any] struct {
	// Level is the gzip compression level.
	Level int
}

// NewGzipWriter creates a new gzip writer with default compression.
func NewGzipWriter[T any]() *GzipWriter[T] {
	return &GzipWriter[T]{Level: gzip.DefaultCompression}
}

// NewGzipWriterWithLevel creates a gzip writer with the given level.
func NewGzipWriterWithLevel[T any](level int) *GzipWriter[T] {
	return &GzipWriter[T]{Level: level}
}

// Write writes the data as gzipped JSON to w.
func (gw *GzipWriter[T]) Write(data T, w io.Writer) error {
	zw, err := gzip.NewWriterLevel(w, gw.Level)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to encode data: %w", err)
	}
	return zw.Close()
}

// Extension returns ".json.gz".
func (gw *GzipWriter[T]) Extension() string { return ".json.gz" }

// ContentType returns the gzip media type.
func (gw *GzipWriter[T]) ContentType() string { return "application/gzip" }

// Bytes encodes data into memory.
func Bytes[T any](enc Encoder[T], data T) ([]byte, error) {
	var buf bytes.Buffer
	if err := enc.Write(data, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes data into the file at path.
func WriteFile[T any](enc Encoder[T], data T, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := enc.Write(data, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// LinesWriter streams values as newline-delimited JSON, optionally gzipped.
// It is not safe for concurrent use.
type LinesWriter[T any] struct {
	zw      *gzip.Writer
	enc     *json.Encoder
	count   int
	lastErr error
}

// NewLinesWriter starts a JSON lines stream on w.
func NewLinesWriter[T any](w io.Writer, compress bool) *LinesWriter[T] {
	lw := &LinesWriter[T]{}
	if compress {
		lw.zw = gzip.NewWriter(w)
		w = lw.zw
	}
	lw.enc = json.NewEncoder(w)
	return lw
}

// Append writes one value. After the first failure every call returns the
// same error.
func (lw *LinesWriter[T]) Append(v T) error {
	if lw.lastErr != nil {
		return lw.lastErr
	}
	if err := lw.enc.Encode(v); err != nil {
		lw.lastErr = fmt.Errorf("failed to encode line %d: %w", lw.count, err)
		return lw.lastErr
	}
	lw.count++
	return nil
}

// Count returns the number of values written.
func (lw *LinesWriter[T]) Count() int { return lw.count }

// Close flushes the gzip stream, if any. It does not close the underlying
// writer.
func (lw *LinesWriter[T]) Close() error {
	if lw.zw != nil {
		if err := lw.zw.Close(); err != nil {
			return err
		}
	}
	return lw.lastErr
}
