package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cdox/internal/app"
	"cdox/internal/config"
	"cdox/internal/model"
	"cdox/internal/repository"
	"cdox/internal/service"
	"cdox/internal/service/mocks"
)

func setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "cdox")
	t.Setenv("DB_NAME", "cdox")
	t.Setenv("CACHE_BACKEND", config.CacheNone)
	t.Setenv("TZ_LOCATION", "UTC")
}

func withMockService(t *testing.T, svc *mocks.MockDocumentService) {
	t.Helper()
	orig := openDeps
	openDeps = func(context.Context, *config.AppConfig, *slog.Logger) (*app.Deps, error) {
		return &app.Deps{Service: svc}, nil
	}
	t.Cleanup(func() { openDeps = orig })
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute("test", args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestList(t *testing.T) {
	setEnv(t)
	svc := new(mocks.MockDocumentService)
	withMockService(t, svc)

	year := 2024
	spec := model.NewFilterSpec([]string{"reports"}, &year, model.OrderAsc)
	svc.On("FilterDocuments", mock.Anything, spec).Return(&service.FilterResult{
		Documents: []model.Document{{
			ID:              "a",
			Title:           "Annual Report",
			PublicationDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}},
		Skipped: []service.SkippedEntry{{ID: "x", Reason: "invalid_entity"}},
	}, nil)

	out, errOut, err := run(t, "list", "--type", "reports", "--year", "2024", "--order", "asc", "--show-date", "--date-layout", "2006-01-02")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Annual Report"`)
	assert.Contains(t, out, `"date": "2024-03-01"`)
	assert.Contains(t, errOut, "entry skipped")
	svc.AssertExpectations(t)
}

func TestYears(t *testing.T) {
	setEnv(t)
	svc := new(mocks.MockDocumentService)
	withMockService(t, svc)

	svc.On("GetDocumentYears", mock.Anything, model.OrderDesc).
		Return([]model.YearCount{{Year: 2024, Count: 1}, {Year: 2023, Count: 2}}, nil)

	out, _, err := run(t, "years")
	require.NoError(t, err)
	assert.Contains(t, out, `"year": 2024`)
	svc.AssertExpectations(t)
}

func TestTypes(t *testing.T) {
	setEnv(t)
	svc := new(mocks.MockDocumentService)
	withMockService(t, svc)

	q := repository.TypeQuery{HideEmpty: true, OrderBy: repository.TypeOrderByCount, Order: model.OrderDesc}
	svc.On("GetDocumentTypes", mock.Anything, q).
		Return([]model.DocumentType{{ID: "t1", Name: "Reports", Slug: "reports", Count: 3}}, nil)

	out, _, err := run(t, "types", "--hide-empty", "--orderby", "count", "--order", "DESC")
	require.NoError(t, err)
	assert.Contains(t, out, `"slug": "reports"`)
	svc.AssertExpectations(t)
}

func TestTypes_InvalidOrderBy(t *testing.T) {
	setEnv(t)
	svc := new(mocks.MockDocumentService)
	withMockService(t, svc)

	_, errOut, err := run(t, "types", "--orderby", "date")
	require.Error(t, err)
	assert.Contains(t, errOut, "--orderby")
	svc.AssertNotCalled(t, "GetDocumentTypes", mock.Anything, mock.Anything)
}

func TestCacheFlush(t *testing.T) {
	setEnv(t)
	svc := new(mocks.MockDocumentService)
	withMockService(t, svc)

	svc.On("InvalidateAll", mock.Anything).Return(nil)

	out, _, err := run(t, "cache", "flush")
	require.NoError(t, err)
	assert.Contains(t, out, "cache invalidated")
	svc.AssertExpectations(t)
}

func TestMigrate(t *testing.T) {
	setEnv(t)
	orig := runMigrations
	t.Cleanup(func() { runMigrations = orig })

	called := false
	runMigrations = func(context.Context, *config.AppConfig, *slog.Logger) error {
		called = true
		return nil
	}
	out, _, err := run(t, "migrate")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, out, "schema is up to date")

	runMigrations = func(context.Context, *config.AppConfig, *slog.Logger) error {
		return errors.New("db down")
	}
	_, errOut, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, errOut, "db down")
}

func TestInvalidConfig(t *testing.T) {
	setEnv(t)
	t.Setenv("DB_HOST", "")

	_, _, err := run(t, "years")
	assert.Error(t, err)
}
