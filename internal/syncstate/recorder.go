package syncstate

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Record is the last-known outcome of a sync pass for one (provider,
// resource) pair. No history is kept, each pass overwrites the previous row.
type Record struct {
	Provider     string
	Resource     string
	LastSyncTime time.Time
	Status       string
	Details      string
}

type Recorder interface {
	Record(ctx context.Context, rec Record) error
	Last(ctx context.Context, provider, resource string) (*Record, error)
}

type PGRecorder struct{ DB *pgxpool.Pool }

func (r *PGRecorder) Record(ctx context.Context, rec Record) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO sync_status(provider, resource, last_sync_time, status, details)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider, resource) DO UPDATE
		SET last_sync_time = EXCLUDED.last_sync_time,
		    status = EXCLUDED.status,
		    details = EXCLUDED.details
	`, rec.Provider, rec.Resource, rec.LastSyncTime, rec.Status, rec.Details)
	return err
}

func (r *PGRecorder) Last(ctx context.Context, provider, resource string) (*Record, error) {
	var rec Record
	err := r.DB.QueryRow(ctx, `
		SELECT provider, resource, last_sync_time, status, details
		FROM sync_status WHERE provider=$1 AND resource=$2
	`, provider, resource).Scan(&rec.Provider, &rec.Resource, &rec.LastSyncTime, &rec.Status, &rec.Details)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
