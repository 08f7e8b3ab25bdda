// Package history is the append-only log of rank observations.
package history

import (
	"context"
	"ctfrank/internal/apperr"
	"ctfrank/internal/assert"
	"ctfrank/internal/db"
	"ctfrank/internal/ranking"
	"ctfrank/internal/telemetry"
	"database/sql"
	"errors"
	"time"
)

const (
	report_db_query        = "db.query"
	report_decode_observed = "store.decode-observed-at"
)

// Store exposes reads of the log and appends to it, rows are never updated
// or deleted.
type Store interface {
	// GetLatest returns the most recently appended observation, ok is false
	// when nothing has been stored yet.
	GetLatest(ctx context.Context) (obs ranking.Observation, ok bool, err error)
	Append(ctx context.Context, obs ranking.Observation) error
	// List returns up to limit observations, newest first.
	List(ctx context.Context, limit int) ([]ranking.Observation, error)
}

type SQLStore struct {
	qry    *db.Queries
	makeTx db.MakeTx
	tel    telemetry.API
}

func NewSQLStore(database *sql.DB, tel telemetry.API) SQLStore {
	assert.NotNil(database, "database")
	assert.NotNil(tel, "telemetry")

	return SQLStore{
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
		tel:    telemetry.NewScopedAPI("history", tel),
	}
}

func (s SQLStore) decode(row db.CtftimeHistory) ranking.Observation {
	obs := ranking.Observation{
		World:  ranking.Rank(row.World.Int64),
		Region: ranking.Rank(row.Region.Int64),
	}
	if !row.CheckedAt.Valid || row.CheckedAt.String == "" {
		return obs
	}
	observedAt, err := time.Parse(time.RFC3339, row.CheckedAt.String)
	if err != nil {
		// an unreadable timestamp is treated like a missing one
		s.tel.ReportWarning(report_decode_observed, err, row.ID, row.CheckedAt.String)
		return obs
	}
	obs.ObservedAt = observedAt
	return obs
}

func (s SQLStore) GetLatest(ctx context.Context) (ranking.Observation, bool, error) {
	row, err := s.qry.GetLatestObservation(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ranking.Observation{}, false, nil
	}
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "GetLatestObservation")
		return ranking.Observation{}, false, apperr.Persistence("get latest observation", err)
	}
	return s.decode(row), true, nil
}

func (s SQLStore) Append(ctx context.Context, obs ranking.Observation) error {
	err := obs.Validate()
	if err != nil {
		return apperr.Persistence("append observation", err)
	}

	params := db.CreateObservationParams{
		World:  sql.NullInt64{Int64: int64(obs.World), Valid: true},
		Region: sql.NullInt64{Int64: int64(obs.Region), Valid: true},
	}
	if !obs.ObservedAt.IsZero() {
		params.CheckedAt = sql.NullString{String: obs.Timestamp(), Valid: true}
	}

	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "begin")
		return apperr.Persistence("begin append", err)
	}
	defer discard()

	err = tx.CreateObservation(ctx, params)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CreateObservation", params)
		return apperr.Persistence("insert observation", err)
	}
	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "commit")
		return apperr.Persistence("commit observation", err)
	}
	return nil
}

func (s SQLStore) List(ctx context.Context, limit int) ([]ranking.Observation, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.qry.ListObservations(ctx, int64(limit))
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListObservations", limit)
		return nil, apperr.Persistence("list observations", err)
	}
	out := make([]ranking.Observation, len(rows))
	for i, row := range rows {
		out[i] = s.decode(row)
	}
	return out, nil
}
