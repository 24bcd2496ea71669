package writer

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runSummary struct {
	Collector string `json:"collector"`
	Freed     uint64 `json:"freed"`
}

func TestJSONWriter_Write(t *testing.T) {
	data := runSummary{Collector: "mark_sweep", Freed: 320}

	t.Run("compact output", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewJSONWriter[runSummary]().Write(data, &buf))
		assert.Equal(t, `{"collector":"mark_sweep","freed":320}`+"\n", buf.String())
	})

	t.Run("pretty output", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrettyJSONWriter[runSummary]().Write(data, &buf))
		assert.Contains(t, buf.String(), "\n  \"collector\"")

		var decoded runSummary
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, data, decoded)
	})
}

func TestGzipWriter_Write(t *testing.T) {
	data := runSummary{Collector: "reference_counting", Freed: 64}

	var buf bytes.Buffer
	require.NoError(t, NewGzipWriter[runSummary]().Write(data, &buf))

	zr, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	var decoded runSummary
	require.NoError(t, json.NewDecoder(zr).Decode(&decoded))
	assert.Equal(t, data, decoded)
}

func TestEncoderMetadata(t *testing.T) {
	var enc Encoder[runSummary] = NewJSONWriter[runSummary]()
	assert.Equal(t, ".json", enc.Extension())
	assert.Equal(t, "application/json", enc.ContentType())

	enc = NewGzipWriterWithLevel[runSummary](gzip.BestSpeed)
	assert.Equal(t, ".json.gz", enc.Extension())
	assert.Equal(t, "application/gzip", enc.ContentType())
}

func TestBytesAndWriteFile(t *testing.T) {
	data := runSummary{Collector: "cascade", Freed: 128}
	enc := NewJSONWriter[runSummary]()

	raw, err := Bytes[runSummary](enc, data)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report"+enc.Extension())
	require.NoError(t, WriteFile[runSummary](enc, data, path))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, onDisk)

	err = WriteFile[runSummary](enc, data, filepath.Join(t.TempDir(), "missing", "x.json"))
	assert.Error(t, err)
}

func TestGzipWriterWithLevel_Invalid(t *testing.T) {
	var buf bytes.Buffer
	err := NewGzipWriterWithLevel[runSummary](42).Write(runSummary{}, &buf)
	assert.Error(t, err)
}

func TestLinesWriter(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		lw := NewLinesWriter[runSummary](&buf, false)
		require.NoError(t, lw.Append(runSummary{Collector: "a", Freed: 1}))
		require.NoError(t, lw.Append(runSummary{Collector: "b", Freed: 2}))
		require.NoError(t, lw.Close())

		assert.Equal(t, 2, lw.Count())
		assert.Equal(t, "{\"collector\":\"a\",\"freed\":1}\n{\"collector\":\"b\",\"freed\":2}\n", buf.String())
	})

	t.Run("gzip", func(t *testing.T) {
		var buf bytes.Buffer
		lw := NewLinesWriter[runSummary](&buf, true)
		for i := 0; i < 3; i++ {
			require.NoError(t, lw.Append(runSummary{Freed: uint64(i)}))
		}
		require.NoError(t, lw.Close())

		zr, err := gzip.NewReader(&buf)
		require.NoError(t, err)
		scanner := bufio.NewScanner(zr)
		lines := 0
		for scanner.Scan() {
			lines++
		}
		require.NoError(t, scanner.Err())
		assert.Equal(t, 3, lines)
	})
}
