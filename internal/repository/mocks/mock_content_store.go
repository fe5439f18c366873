package mocks

import (
	"context"

	"cdox/internal/model"
	"cdox/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) QueryEntries(ctx context.Context, q repository.EntryQuery) ([]model.CatalogEntry, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CatalogEntry), args.Error(1)
}

func (m *MockContentStore) FindEntry(ctx context.Context, id string) (*model.CatalogEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CatalogEntry), args.Error(1)
}

func (m *MockContentStore) CountByYear(ctx context.Context, kind string, order model.Order) ([]model.YearCount, error) {
	args := m.Called(ctx, kind, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.YearCount), args.Error(1)
}

func (m *MockContentStore) ListDocumentTypes(ctx context.Context, q repository.TypeQuery) ([]model.DocumentType, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentType), args.Error(1)
}

type MockCounterStore struct {
	mock.Mock
}

func (m *MockCounterStore) ReadDownloadCount(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockCounterStore) WriteDownloadCount(ctx context.Context, id string, n int) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}
