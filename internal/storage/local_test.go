package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandrykarina/GC/pkg/config"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
)

func TestNewLocalStorage(t *testing.T) {
	t.Run("CreateWithPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "storage")

		storage, err := NewLocalStorage(path)
		require.NoError(t, err)
		require.NotNil(t, storage)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, StorageTypeLocal, storage.Type())
	})

	t.Run("CreateWithEmptyPath", func(t *testing.T) {
		t.Chdir(t.TempDir())

		storage, err := NewLocalStorage("")
		require.NoError(t, err)
		assert.Equal(t, "./storage", storage.GetBasePath())
	})
}

func TestLocalStorage_UploadDownload(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		content := []byte(`{"run_id":"r1"}`)
		require.NoError(t, storage.Upload(ctx, "runs/r1/report.json", bytes.NewReader(content), "application/json"))

		data, err := os.ReadFile(filepath.Join(tempDir, "runs", "r1", "report.json"))
		require.NoError(t, err)
		assert.Equal(t, content, data)

		reader, err := storage.Download(ctx, "runs/r1/report.json")
		require.NoError(t, err)
		defer reader.Close()
		got, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, storage.Upload(ctx, "over.txt", bytes.NewReader([]byte("one")), ""))
		require.NoError(t, storage.Upload(ctx, "over.txt", bytes.NewReader([]byte("two")), ""))

		data, err := os.ReadFile(filepath.Join(tempDir, "over.txt"))
		require.NoError(t, err)
		assert.Equal(t, "two", string(data))
	})

	t.Run("UploadWithCanceledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := storage.Upload(cctx, "canceled.txt", bytes.NewReader([]byte("test")), "")
		assert.Error(t, err)
	})

	t.Run("DownloadMissing", func(t *testing.T) {
		_, err := storage.Download(ctx, "nonexistent.txt")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("RejectsEscapingKey", func(t *testing.T) {
		err := storage.Upload(ctx, "../outside.txt", bytes.NewReader([]byte("x")), "")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetErrorCode(err))

		_, err = os.Stat(filepath.Join(filepath.Dir(tempDir), "outside.txt"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestLocalStorage_Delete(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("DeleteExistingFile", func(t *testing.T) {
		filePath := filepath.Join(tempDir, "delete", "test.txt")
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte("to delete"), 0644))

		require.NoError(t, storage.Delete(ctx, "delete/test.txt"))

		_, err = os.Stat(filePath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("DeleteNonExistentFile", func(t *testing.T) {
		assert.NoError(t, storage.Delete(ctx, "nonexistent.txt"))
	})
}

func TestLocalStorage_Exists(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "exists.txt"), []byte("exists"), 0644))

	exists, err := storage.Exists(context.Background(), "exists.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = storage.Exists(context.Background(), "notexists.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_GetURL(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tempDir, "path", "to", "file.txt"), storage.GetURL("path/to/file.txt"))
	assert.Empty(t, storage.GetURL("../x"))
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Local", func(t *testing.T) {
		storage, err := NewStorage(ctx, &config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &LocalStorage{}, storage)
	})

	t.Run("EmptyTypeIsLocal", func(t *testing.T) {
		storage, err := NewStorage(ctx, &config.StorageConfig{LocalPath: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &LocalStorage{}, storage)
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := NewStorage(ctx, &config.StorageConfig{Type: "ftp", LocalPath: t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported storage type")
	})
}
