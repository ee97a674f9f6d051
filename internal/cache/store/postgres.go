package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/contentpulse/internal/domain/analytics/entity"
)

// Postgres persists the dashboard snapshot in a single-row table
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed snapshot store, ensuring the
// snapshot table exists.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS dashboard_snapshots (
			key         text PRIMARY KEY,
			payload     jsonb NOT NULL,
			computed_at timestamptz NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Load retrieves the persisted snapshot. Missing rows and unparsable
// payloads are both cache misses.
func (p *Postgres) Load(ctx context.Context) (*entity.Snapshot, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT payload FROM dashboard_snapshots WHERE key = $1`, dashboardKey,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var snap entity.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, nil
	}
	return &snap, nil
}

// Save upserts the snapshot row
func (p *Postgres) Save(ctx context.Context, snap *entity.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO dashboard_snapshots (key, payload, computed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET payload = $2, computed_at = $3`,
		dashboardKey, payload, snap.ComputedAt)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot row if present
func (p *Postgres) Delete(ctx context.Context) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM dashboard_snapshots WHERE key = $1`, dashboardKey)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}
