package database

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdox/internal/config"
)

func validConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:               "db.internal",
		Port:               "5432",
		User:               "catalog",
		Password:           "s3cret",
		Name:               "cdox",
		SSLMode:            "require",
		MaxOpenConns:       8,
		MaxIdleConns:       2,
		ConnMaxLifetimeSec: 60,
	}
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn, err := BuildPostgresDSN(validConfig())
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:5432", u.Host)
	assert.Equal(t, "/cdox", u.Path)
	assert.Equal(t, "catalog", u.User.Username())
	pass, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "s3cret", pass)

	q := u.Query()
	assert.Equal(t, "require", q.Get("sslmode"))
	assert.Equal(t, ApplicationName, q.Get("application_name"))
	assert.Equal(t, "5", q.Get("connect_timeout"))
}

func TestBuildPostgresDSN_Optional(t *testing.T) {
	c := validConfig()
	c.Password = ""
	c.SSLMode = ""

	dsn, err := BuildPostgresDSN(c)
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	_, hasPass := u.User.Password()
	assert.False(t, hasPass)
	assert.False(t, u.Query().Has("sslmode"))
}

func TestBuildPostgresDSN_IPv6Host(t *testing.T) {
	c := validConfig()
	c.Host = "::1"

	dsn, err := BuildPostgresDSN(c)
	require.NoError(t, err)
	assert.Contains(t, dsn, "@[::1]:5432/")
}

func TestBuildPostgresDSN_Invalid(t *testing.T) {
	for name, mutate := range map[string]func(*config.DatabaseConfig){
		"host": func(c *config.DatabaseConfig) { c.Host = "" },
		"port": func(c *config.DatabaseConfig) { c.Port = "" },
		"user": func(c *config.DatabaseConfig) { c.User = "" },
		"name": func(c *config.DatabaseConfig) { c.Name = "" },
	} {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(&c)
			_, err := BuildPostgresDSN(c)
			assert.ErrorContains(t, err, "invalid database config")
		})
	}
}

// stubOpen makes sqlOpen hand out db for the duration of the test.
func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, err }
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNewPostgres(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	stubOpen(t, db, nil)

	mock.ExpectPing()

	got, err := NewPostgres(context.Background(), validConfig())
	require.NoError(t, err)
	assert.Same(t, db, got)
	assert.Equal(t, 8, got.Stats().MaxOpenConnections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgres_OpenError(t *testing.T) {
	stubOpen(t, nil, errors.New("open error"))

	got, err := NewPostgres(context.Background(), validConfig())
	assert.ErrorContains(t, err, "sql open: open error")
	assert.Nil(t, got)
}

func TestNewPostgres_PingError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	stubOpen(t, db, nil)

	mock.ExpectPing().WillReturnError(errors.New("ping failed"))

	got, err := NewPostgres(context.Background(), validConfig())
	assert.ErrorContains(t, err, "db ping: ping failed")
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgres_InvalidConfig(t *testing.T) {
	got, err := NewPostgres(context.Background(), config.DatabaseConfig{})
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestNewPostgres_CanceledContext(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	stubOpen(t, db, nil)

	mock.ExpectPing().WillReturnError(context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := NewPostgres(ctx, validConfig())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}
