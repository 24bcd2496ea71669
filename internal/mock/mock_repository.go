// Package mock provides mock implementations for testing.
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mandrykarina/GC/pkg/model"
)

// MockRunRepository is a mock implementation of the RunRepository interface.
type MockRunRepository struct {
	mock.Mock
}

// SaveRun mocks the SaveRun method.
func (m *MockRunRepository) SaveRun(ctx context.Context, cmp *model.Comparison) error {
	args := m.Called(ctx, cmp)
	return args.Error(0)
}

// GetRun mocks the GetRun method.
func (m *MockRunRepository) GetRun(ctx context.Context, runID string) (*model.Comparison, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comparison), args.Error(1)
}

// ListRuns mocks the ListRuns method.
func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]*model.Comparison, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Comparison), args.Error(1)
}

// DeleteRun mocks the DeleteRun method.
func (m *MockRunRepository) DeleteRun(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

// ExpectSaveRun sets up an expectation for any SaveRun call.
func (m *MockRunRepository) ExpectSaveRun(err error) *mock.Call {
	return m.On("SaveRun", mock.Anything, mock.AnythingOfType("*model.Comparison")).Return(err)
}

// ExpectGetRun sets up an expectation for GetRun.
func (m *MockRunRepository) ExpectGetRun(runID string, cmp *model.Comparison, err error) *mock.Call {
	return m.On("GetRun", mock.Anything, runID).Return(cmp, err)
}

// ExpectListRuns sets up an expectation for ListRuns.
func (m *MockRunRepository) ExpectListRuns(limit int, runs []*model.Comparison, err error) *mock.Call {
	return m.On("ListRuns", mock.Anything, limit).Return(runs, err)
}

// ExpectDeleteRun sets up an expectation for DeleteRun.
func (m *MockRunRepository) ExpectDeleteRun(runID string, err error) *mock.Call {
	return m.On("DeleteRun", mock.Anything, runID).Return(err)
}
