package migration

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sentinelQuery = regexp.QuoteMeta("SELECT to_regclass('public.catalog_entries') IS NOT NULL")

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestEnsureMigrated_SkipsWhenSchemaExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	var buf bytes.Buffer
	require.NoError(t, EnsureMigrated(context.Background(), db, testLogger(&buf), "db.local"))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), `"msg":"db_migration_skip"`)
	assert.Contains(t, buf.String(), `"db_host":"db.local"`)
}

func TestEnsureMigrated_RunsEveryStep(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, step := range steps {
		mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	var buf bytes.Buffer
	require.NoError(t, EnsureMigrated(context.Background(), db, testLogger(&buf), "db.local"))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), `"msg":"db_migration_success"`)
	assert.Contains(t, buf.String(), `"migration_step":"create_table_catalog_entry_types"`)
}

func TestEnsureMigrated_StepFailureStops(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sentinelQuery).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("permission denied"))

	var buf bytes.Buffer
	err = EnsureMigrated(context.Background(), db, testLogger(&buf), "db.local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), steps[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestEnsureMigrated_SentinelError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(sentinelQuery).WillReturnError(errors.New("connection reset"))

	err = EnsureMigrated(context.Background(), db, nil, "db.local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sentinel")
}
