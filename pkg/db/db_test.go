package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-contact/api/pkg/db"
)

func TestDefaultPoolConfig(t *testing.T) {
	cfg := db.DefaultPoolConfig("postgres://localhost/site")
	assert.Equal(t, "postgres://localhost/site", cfg.URL)
	assert.Positive(t, cfg.MaxConns)
	assert.LessOrEqual(t, cfg.MinConns, cfg.MaxConns)
	assert.Positive(t, cfg.ConnectTimeout)
}

func TestConnectPostgres_Rejects(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty url", url: ""},
		{name: "unparseable url", url: "postgres://%zz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ConnectPostgres(context.Background(), db.DefaultPoolConfig(tt.url))
			assert.Error(t, err)
		})
	}
}

func TestOpenSQLite(t *testing.T) {
	_, err := db.OpenSQLite(context.Background(), "")
	assert.Error(t, err)

	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	var one int
	require.NoError(t, conn.Get(&one, "SELECT 1"))
	assert.Equal(t, 1, one)
}

func TestOpenSQLite_File(t *testing.T) {
	path := t.TempDir() + "/contact.db"
	conn, err := db.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer conn.Close()
	assert.NoError(t, conn.Ping())
}
