package mocks

import (
	"context"

	"cdox/internal/model"
	"cdox/internal/repository"
	"cdox/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) GetFilteredDocuments(ctx context.Context, spec model.FilterSpec) ([]model.Document, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) FilterDocuments(ctx context.Context, spec model.FilterSpec) (*service.FilterResult, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FilterResult), args.Error(1)
}

func (m *MockDocumentService) GetDocumentYears(ctx context.Context, order model.Order) ([]model.YearCount, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.YearCount), args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) IncrementDownloadCount(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentService) GetDocumentTypes(ctx context.Context, q repository.TypeQuery) ([]model.DocumentType, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentType), args.Error(1)
}

func (m *MockDocumentService) GetFilterForm(ctx context.Context, opts service.FormOptions) (*service.FilterForm, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FilterForm), args.Error(1)
}

func (m *MockDocumentService) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
