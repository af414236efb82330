package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/model"
)

// ErrSnapshotTableMissing - таблица снимков не создана
var ErrSnapshotTableMissing = errors.New("таблица dashboard_snapshots не существует")

type SnapshotRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewSnapshotRepository(db *sql.DB, logger *logrus.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

// EnsureSchema создает таблицу снимков, если ее нет
func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	query := `
        CREATE TABLE IF NOT EXISTS dashboard_snapshots (
            id         UUID PRIMARY KEY,
            stats      JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )
    `
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create dashboard_snapshots: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) Create(ctx context.Context, snapshot *model.DashboardSnapshot) error {
	stats, err := json.Marshal(snapshot.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot stats: %w", err)
	}

	query := `
        INSERT INTO dashboard_snapshots (id, stats, created_at)
        VALUES ($1, $2, $3)
    `
	_, err = r.db.ExecContext(ctx, query, snapshot.ID, stats, snapshot.CreatedAt)
	if err != nil {
		return wrapPQ(err, "failed to create snapshot")
	}
	return nil
}

// List возвращает последние снимки, новые первыми
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]model.DashboardSnapshot, error) {
	query := `
        SELECT id, stats, created_at
        FROM dashboard_snapshots
        ORDER BY created_at DESC
        LIMIT $1
    `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, wrapPQ(err, "failed to query snapshots")
	}
	defer rows.Close()

	snapshots := []model.DashboardSnapshot{}
	for rows.Next() {
		var (
			snapshot model.DashboardSnapshot
			stats    []byte
		)
		if err := rows.Scan(&snapshot.ID, &stats, &snapshot.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := json.Unmarshal(stats, &snapshot.Stats); err != nil {
			r.logger.WithError(err).WithField("snapshot_id", snapshot.ID).Warn("Не удалось разобрать показатели снимка")
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

func wrapPQ(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "undefined_table" {
		return fmt.Errorf("%s: %w", msg, ErrSnapshotTableMissing)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
