package mock

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/mandrykarina/GC/internal/storage"
)

// MockStorage is a mock implementation of the Storage interface.
type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

// Upload mocks the Upload method.
func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	args := m.Called(ctx, key, reader, contentType)
	return args.Error(0)
}

// Download mocks the Download method.
func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Exists mocks the Exists method.
func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// GetURL returns "mock://" + key.
func (m *MockStorage) GetURL(key string) string {
	return "mock://" + key
}

// Type returns the mock storage type.
func (m *MockStorage) Type() storage.StorageType {
	return "mock"
}

// ExpectUpload sets up an expectation for Upload.
func (m *MockStorage) ExpectUpload(key string, err error) *mock.Call {
	return m.On("Upload", mock.Anything, key, mock.Anything, mock.Anything).Return(err)
}

// ExpectAnyUpload sets up an expectation for any Upload call.
func (m *MockStorage) ExpectAnyUpload(err error) *mock.Call {
	return m.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(err)
}

// ExpectDownload sets up an expectation for Download.
func (m *MockStorage) ExpectDownload(key string, reader io.ReadCloser, err error) *mock.Call {
	return m.On("Download", mock.Anything, key).Return(reader, err)
}

// ExpectDelete sets up an expectation for Delete.
func (m *MockStorage) ExpectDelete(key string, err error) *mock.Call {
	return m.On("Delete", mock.Anything, key).Return(err)
}

// ExpectExists sets up an expectation for Exists.
func (m *MockStorage) ExpectExists(key string, exists bool, err error) *mock.Call {
	return m.On("Exists", mock.Anything, key).Return(exists, err)
}
