package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:metadata?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestSQLiteRepository_SetGet(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "access_token", []byte("T1")))

	got, err := repo.Get(ctx, "access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("T1"), got)
}

func TestSQLiteRepository_SetOverwrites(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "access_token", []byte("T1")))
	require.NoError(t, repo.Set(ctx, "access_token", []byte("T2")))

	got, err := repo.Get(ctx, "access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("T2"), got)
}

func TestSQLiteRepository_GetMissingReturnsNil(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	got, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "refresh_token", []byte("R1")))
	require.NoError(t, repo.Delete(ctx, "refresh_token"))

	got, err := repo.Get(ctx, "refresh_token")
	require.NoError(t, err)
	require.Nil(t, got)

	// Deleting a missing key is not an error.
	require.NoError(t, repo.Delete(ctx, "refresh_token"))
}

func TestSQLiteRepository_Clear(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "a", []byte("1")))
	require.NoError(t, repo.Set(ctx, "b", []byte("2")))
	require.NoError(t, repo.Clear(ctx))

	for _, k := range []string{"a", "b"} {
		got, err := repo.Get(ctx, k)
		require.NoError(t, err)
		require.Nil(t, got)
	}
}
