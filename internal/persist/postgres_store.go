package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// PostgresStore keeps the snapshot as a single jsonb row. The table is a
// blob slot, not a relational model: the aggregate stays authoritative in
// memory and Postgres only provides durability.
type PostgresStore struct {
	db *sqlx.DB
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS league_snapshots (
	id       INTEGER PRIMARY KEY,
	data     JSONB NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL
)`

// NewPostgresStore connects and ensures the snapshot table exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres_store: connect: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres_store: ensure schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Save upserts the singleton row.
func (p *PostgresStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("postgres_store.Save: marshal: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO league_snapshots (id, data, saved_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, saved_at = EXCLUDED.saved_at`,
		data, snap.LastSaved)
	if err != nil {
		return fmt.Errorf("postgres_store.Save: upsert: %w", err)
	}
	return nil
}

// Load reads the singleton row, or returns (nil, nil) when none exists yet.
func (p *PostgresStore) Load(ctx context.Context) (*Snapshot, error) {
	var data []byte
	err := p.db.GetContext(ctx, &data, `SELECT data FROM league_snapshots WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres_store.Load: select: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("postgres_store.Load: unmarshal: %w", err)
	}
	snap.Normalize()
	return &snap, nil
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}
