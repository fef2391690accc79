package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-contact/api/pkg/db"
	"portfolio-contact/api/services/storage"
)

func newSQLiteStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	store, err := storage.NewSQLiteStorage(conn)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestSQLiteStorage_CreateAndList(t *testing.T) {
	t.Parallel()
	store := newSQLiteStore(t)
	ctx := context.Background()

	first, err := store.CreateMessage(ctx, testInput)
	require.NoError(t, err)
	second, err := store.CreateMessage(ctx, storage.NewContactMessage{
		Name: "Al", Email: "c@d.com", Subject: "Yo", Message: "0987654321",
	})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	all, err := store.ListMessages(ctx, storage.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, "Jo", all[0].Name)
	assert.Equal(t, "Yo", all[1].Subject)
	assert.True(t, all[0].CreatedAt.Equal(first.CreatedAt))

	page, err := store.ListMessages(ctx, storage.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)
}

func TestSQLiteStorage_MigrateIsRepeatable(t *testing.T) {
	t.Parallel()
	store := newSQLiteStore(t)
	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.Ping(context.Background()))
}

func TestNewSQLiteStorage_NilDB(t *testing.T) {
	t.Parallel()
	_, err := storage.NewSQLiteStorage(nil)
	assert.Error(t, err)
}
