package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioJSON = []byte(`{"scenario_name":"cycle","heap_size":1024,"operations":[{"op":"allocate","id":0,"size":16},{"op":"collect"}]}`)

func TestCompressors(t *testing.T) {
	for _, c := range []Compressor{GzipCompressor{}, ZstdCompressor{}} {
		t.Run(c.Type().String(), func(t *testing.T) {
			packed, err := c.Compress(scenarioJSON)
			require.NoError(t, err)
			assert.False(t, bytes.Equal(scenarioJSON, packed))
			assert.Equal(t, c.Type(), DetectType(packed))

			plain, err := AutoDecompress(packed)
			require.NoError(t, err)
			assert.Equal(t, scenarioJSON, plain)
		})
	}
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, TypeNone, DetectType(nil))
	assert.Equal(t, TypeNone, DetectType([]byte("{}")))
	assert.Equal(t, TypeGzip, DetectType([]byte{0x1f, 0x8b}))
	assert.Equal(t, TypeZstd, DetectType([]byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}))
}

func TestAutoDecompress_Plain(t *testing.T) {
	out, err := AutoDecompress(scenarioJSON)
	require.NoError(t, err)
	assert.Equal(t, scenarioJSON, out)
}

func TestAutoDecompress_Corrupt(t *testing.T) {
	_, err := AutoDecompress([]byte{0x1f, 0x8b, 0x00, 0x01})
	assert.Error(t, err)
}

func TestTypeForPath(t *testing.T) {
	tests := []struct {
		path string
		want Type
		ext  string
	}{
		{"tree.json", TypeNone, ""},
		{"tree.json.gz", TypeGzip, ".gz"},
		{"tree.json.zst", TypeZstd, ".zst"},
		{"tree.json.zstd", TypeZstd, ".zst"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForPath(tt.path))
			assert.Equal(t, tt.ext, tt.want.Extension())
		})
	}
}

func TestCompressForPath(t *testing.T) {
	out, err := CompressForPath("x.json", scenarioJSON)
	require.NoError(t, err)
	assert.Equal(t, scenarioJSON, out)

	out, err = CompressForPath("x.json.zst", scenarioJSON)
	require.NoError(t, err)
	assert.Equal(t, TypeZstd, DetectType(out))
}
