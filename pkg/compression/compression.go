// Package compression reads and writes gzip or zstd compressed scenario
// files.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Type represents the compression algorithm used.
type Type uint8

const (
	// TypeNone represents plain data
	TypeNone Type = iota
	TypeGzip
	TypeZstd
)

func (t Type) String() string {
	switch t {
	case TypeGzip:
		return "gzip"
	case TypeZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file suffix for t, including the dot.
func (t Type) Extension() string {
	switch t {
	case TypeGzip:
		return ".gz"
	case TypeZstd:
		return ".zst"
	default:
		return ""
	}
}

// Compressor compresses whole buffers.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Type() Type
}

// GzipCompressor implements Compressor using gzip.
type GzipCompressor struct{}

// Compress compresses data using gzip.
func (GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress decompresses gzip data.
func (GzipCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Type returns TypeGzip.
func (GzipCompressor) Type() Type { return TypeGzip }

// ZstdCompressor implements Compressor using zstd.
type ZstdCompressor struct{}

// Compress compresses data using zstd.
func (ZstdCompressor) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress decompresses zstd data.
func (ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// Type returns TypeZstd.
func (ZstdCompressor) Type() Type { return TypeZstd }

// New returns the compressor for t, or nil for TypeNone.
func New(t Type) Compressor {
	switch t {
	case TypeGzip:
		return GzipCompressor{}
	case TypeZstd:
		return ZstdCompressor{}
	default:
		return nil
	}
}

// DetectType detects the compression type from magic bytes.
func DetectType(data []byte) Type {
	// zstd magic: 0x28 0xb5 0x2f 0xfd
	if len(data) >= 4 && data[0] == 0x28 && data[1] == 0xb5 && data[2] == 0x2f && data[3] == 0xfd {
		return TypeZstd
	}
	// gzip magic: 0x1f 0x8b
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		return TypeGzip
	}
	return TypeNone
}

// TypeForPath picks the compression type from a file name suffix.
func TypeForPath(path string) Type {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return TypeGzip
	case strings.HasSuffix(path, ".zst"), strings.HasSuffix(path, ".zstd"):
		return TypeZstd
	default:
		return TypeNone
	}
}

// AutoDecompress decompresses gzip or zstd data. Plain data is returned
// unchanged.
func AutoDecompress(data []byte) ([]byte, error) {
	c := New(DetectType(data))
	if c == nil {
		return data, nil
	}
	return c.Decompress(data)
}

// CompressForPath compresses data according to the suffix of path.
func CompressForPath(path string, data []byte) ([]byte, error) {
	c := New(TypeForPath(path))
	if c == nil {
		return data, nil
	}
	return c.Compress(data)
}
