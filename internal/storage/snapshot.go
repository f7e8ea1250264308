package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"querychat/internal/models"
)

// SnapshotRepository keeps the chat history snapshot as one JSON row of
// chat_snapshots.
type SnapshotRepository struct {
	db     *sql.DB
	driver string
	key    string
}

func NewSnapshotRepository(db *sql.DB, driver, key string) *SnapshotRepository {
	return &SnapshotRepository{db: db, driver: driver, key: key}
}

// Load returns the stored snapshot, or an empty one if nothing was saved yet.
func (r *SnapshotRepository) Load(ctx context.Context) (models.Snapshot, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM chat_snapshots WHERE snapshot_key = ?`, r.key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	snap := models.Snapshot{}
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Save replaces the stored snapshot.
func (r *SnapshotRepository) Save(ctx context.Context, snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	stmt := `INSERT INTO chat_snapshots (snapshot_key, payload, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`
	if isSQLite(r.driver) {
		stmt = `INSERT INTO chat_snapshots (snapshot_key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(snapshot_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	}
	if _, err := r.db.ExecContext(ctx, stmt, r.key, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
