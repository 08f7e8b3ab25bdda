package history

import (
	"context"
	"ctfrank/internal/apperr"
	"ctfrank/internal/db"
	"ctfrank/internal/ranking"
	"ctfrank/internal/telemetry"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (SQLStore, *sql.DB, *telemetry.Recorder) {
	t.Helper()
	database, err := db.OpenDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	rec := &telemetry.Recorder{}
	return NewSQLStore(database, rec), database, rec
}

func oslo(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)
	return loc
}

func TestEmptyStore(t *testing.T) {
	store, _, rec := setupStore(t)

	obs, ok, err := store.GetLatest(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, ranking.Observation{}, obs)
	require.Empty(t, rec.Broken())

	list, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestRoundTrip(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	observed := time.Date(2024, time.February, 10, 18, 4, 5, 0, oslo(t))
	in := ranking.Observation{ObservedAt: observed, World: 42, Region: 7}
	require.NoError(t, store.Append(ctx, in))

	out, ok, err := store.GetLatest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in.World, out.World)
	require.Equal(t, in.Region, out.Region)
	require.Equal(t, in.Timestamp(), out.Timestamp())
	require.True(t, observed.Equal(out.ObservedAt))
}

func TestLatestIsByInsertionOrder(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()
	loc := oslo(t)

	// the second append carries an older timestamp, it must still be the latest
	require.NoError(t, store.Append(ctx, ranking.Observation{
		ObservedAt: time.Date(2024, time.May, 2, 0, 0, 0, 0, loc),
		World:      50,
		Region:     10,
	}))
	require.NoError(t, store.Append(ctx, ranking.Observation{
		ObservedAt: time.Date(2024, time.May, 1, 0, 0, 0, 0, loc),
		World:      40,
		Region:     12,
	}))

	latest, ok, err := store.GetLatest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ranking.Rank(40), latest.World)
	require.Equal(t, ranking.Rank(12), latest.Region)

	list, err := store.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, ranking.Rank(40), list[0].World)
	require.Equal(t, ranking.Rank(50), list[1].World)
}

func TestNullAndBrokenTimestamps(t *testing.T) {
	store, database, rec := setupStore(t)
	ctx := context.Background()
	qry := db.New(database)

	require.NoError(t, qry.CreateObservation(ctx, db.CreateObservationParams{
		World:  sql.NullInt64{Int64: 5, Valid: true},
		Region: sql.NullInt64{Int64: 1, Valid: true},
	}))
	latest, ok, err := store.GetLatest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, latest.ObservedAt.IsZero())
	require.Equal(t, ranking.NoData, latest.Timestamp())

	require.NoError(t, qry.CreateObservation(ctx, db.CreateObservationParams{
		CheckedAt: sql.NullString{String: "yesterday", Valid: true},
		World:     sql.NullInt64{Int64: 6, Valid: true},
		Region:    sql.NullInt64{Int64: 2, Valid: true},
	}))
	latest, ok, err = store.GetLatest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, latest.ObservedAt.IsZero())
	require.Equal(t, ranking.Rank(6), latest.World)
	require.Empty(t, rec.Broken())
}

func TestAppendRejectsIncomplete(t *testing.T) {
	store, database, _ := setupStore(t)

	err := store.Append(context.Background(), ranking.Observation{World: 3})
	require.ErrorIs(t, err, apperr.ErrPersistence)
	require.ErrorIs(t, err, ranking.ErrIncompleteObservation)

	count, err := db.New(database).CountObservations(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestClosedDatabase(t *testing.T) {
	store, database, rec := setupStore(t)
	require.NoError(t, database.Close())

	_, _, err := store.GetLatest(context.Background())
	require.ErrorIs(t, err, apperr.ErrPersistence)

	err = store.Append(context.Background(), ranking.Observation{World: 1, Region: 1})
	require.ErrorIs(t, err, apperr.ErrPersistence)
	require.NotEmpty(t, rec.Broken())
}
