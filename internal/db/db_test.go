package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDriver(t *testing.T) {
	table := []struct {
		connection string
		expected   string
	}{
		{connection: "libsql://ctfrank-team.turso.io?authToken=abc", expected: "libsql"},
		{connection: "https://ctfrank-team.turso.io", expected: "libsql"},
		{connection: "http://127.0.0.1:8080", expected: "libsql"},
		{connection: "wss://db.example", expected: "libsql"},
		{connection: "file:history.db", expected: "sqlite"},
		{connection: "history.db", expected: "sqlite"},
		{connection: "/var/lib/ctfrank/history.db", expected: "sqlite"},
		{connection: ":memory:", expected: "sqlite"},
	}

	for _, row := range table {
		require.Equal(t, row.expected, Driver(row.connection), row.connection)
	}
}

func TestOpenDBEmpty(t *testing.T) {
	_, err := OpenDB(context.Background(), "")
	require.Error(t, err)
}

func TestQueries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	database, err := OpenDB(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer database.Close()

	// applying the schema twice is harmless
	require.NoError(t, EnsureSchema(ctx, database))

	qry := New(database)

	_, err = qry.GetLatestObservation(ctx)
	require.ErrorIs(t, err, sql.ErrNoRows)

	for i := int64(1); i <= 3; i++ {
		err = qry.CreateObservation(ctx, CreateObservationParams{
			CheckedAt: sql.NullString{String: "2024-01-01T00:00:00+01:00", Valid: true},
			World:     sql.NullInt64{Int64: 100 - i, Valid: true},
			Region:    sql.NullInt64{Int64: i, Valid: true},
		})
		require.NoError(t, err)
	}

	latest, err := qry.GetLatestObservation(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(97), latest.World.Int64)
	require.Equal(t, int64(3), latest.Region.Int64)

	count, err := qry.CountObservations(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	rows, err := qry.ListObservations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(3), rows[0].Region.Int64)
	require.Equal(t, int64(2), rows[1].Region.Int64)
}

func TestMakeTxDiscard(t *testing.T) {
	ctx := context.Background()
	database, err := OpenDB(ctx, ":memory:")
	require.NoError(t, err)
	defer database.Close()

	tx, discard, _, err := NewMakeTx(database)(ctx)
	require.NoError(t, err)
	err = tx.CreateObservation(ctx, CreateObservationParams{
		World:  sql.NullInt64{Int64: 1, Valid: true},
		Region: sql.NullInt64{Int64: 1, Valid: true},
	})
	require.NoError(t, err)
	require.NoError(t, discard())

	count, err := New(database).CountObservations(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}
