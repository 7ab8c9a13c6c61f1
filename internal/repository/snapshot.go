package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
	"wls-leaderboard/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type SnapshotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSnapshotRepository(sqlDB *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: sqlDB, logger: logger}
}

// Insert persists one applied poll cycle and returns the generated snapshot id.
func (r *SnapshotRepository) Insert(ctx context.Context, snap *domain.Snapshot) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate snapshot id: %w", err)
	}

	payload, err := json.Marshal(snap.Leaderboard)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, leaderboard_id, cycle_seq, changed_rows, payload, fetched_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, snap.LeaderboardID, snap.CycleSeq, snap.ChangedRows, string(payload), snap.FetchedAt, time.Now(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("leaderboard_id", snap.LeaderboardID).Msg("failed to insert snapshot")
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return id, nil
}

// GetLatest returns the most recent snapshot for a leaderboard, or nil when
// none has been persisted yet.
func (r *SnapshotRepository) GetLatest(ctx context.Context, leaderboardID string) (*domain.Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, leaderboard_id, cycle_seq, changed_rows, payload, fetched_at, created_at
		 FROM snapshots WHERE leaderboard_id = ?
		 ORDER BY created_at DESC, cycle_seq DESC LIMIT 1`,
		leaderboardID,
	)

	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return snap, nil
}

// ListRecent returns up to limit snapshots for a leaderboard, newest first.
func (r *SnapshotRepository) ListRecent(ctx context.Context, leaderboardID string, limit int) ([]domain.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, leaderboard_id, cycle_seq, changed_rows, payload, fetched_at, created_at
		 FROM snapshots WHERE leaderboard_id = ?
		 ORDER BY created_at DESC, cycle_seq DESC LIMIT ?`,
		leaderboardID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep snapshots per leaderboard and deletes the rest.
func (r *SnapshotRepository) Prune(ctx context.Context, leaderboardID string, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE leaderboard_id = ? AND id NOT IN (
		     SELECT id FROM snapshots WHERE leaderboard_id = ?
		     ORDER BY created_at DESC, cycle_seq DESC LIMIT ?
		 )`,
		leaderboardID, leaderboardID, keep,
	)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var payload string
	if err := row.Scan(&snap.ID, &snap.LeaderboardID, &snap.CycleSeq, &snap.ChangedRows, &payload, &snap.FetchedAt, &snap.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &snap.Leaderboard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot payload: %w", err)
	}
	return &snap, nil
}
