package db

import (
	"context"
	"database/sql"
)

const getLatestObservation = `-- name: GetLatestObservation :one
SELECT id, checked_at, world, region FROM ctftime_history
ORDER BY id DESC
LIMIT 1
`

func (q *Queries) GetLatestObservation(ctx context.Context) (CtftimeHistory, error) {
	row := q.db.QueryRowContext(ctx, getLatestObservation)
	var i CtftimeHistory
	err := row.Scan(
		&i.ID,
		&i.CheckedAt,
		&i.World,
		&i.Region,
	)
	return i, err
}

const listObservations = `-- name: ListObservations :many
SELECT id, checked_at, world, region FROM ctftime_history
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) ListObservations(ctx context.Context, limit int64) ([]CtftimeHistory, error) {
	rows, err := q.db.QueryContext(ctx, listObservations, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CtftimeHistory
	for rows.Next() {
		var i CtftimeHistory
		if err := rows.Scan(
			&i.ID,
			&i.CheckedAt,
			&i.World,
			&i.Region,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createObservation = `-- name: CreateObservation :exec
INSERT INTO ctftime_history (checked_at, world, region)
VALUES (?, ?, ?)
`

type CreateObservationParams struct {
	CheckedAt sql.NullString
	World     sql.NullInt64
	Region    sql.NullInt64
}

func (q *Queries) CreateObservation(ctx context.Context, arg CreateObservationParams) error {
	_, err := q.db.ExecContext(ctx, createObservation, arg.CheckedAt, arg.World, arg.Region)
	return err
}

const countObservations = `-- name: CountObservations :one
SELECT count(*) FROM ctftime_history
`

func (q *Queries) CountObservations(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countObservations)
	var count int64
	err := row.Scan(&count)
	return count, err
}
