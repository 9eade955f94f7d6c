package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/pkg/database"
)

// activityLogRepository implements ActivityLogRepository interface
type activityLogRepository struct {
	db *database.Postgres
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *database.Postgres) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

// Create appends one log entry
func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO activity_log (id, action, description, actor, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.DB.ExecContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.Description,
		entry.Actor,
		entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create activity log entry: %w", err)
	}

	return nil
}

// ListRecent returns the newest entries, most recent first
func (r *activityLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.ActivityLogEntry, error) {
	query := `
		SELECT id, action, description, actor, created_at
		FROM activity_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity log: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ActivityLogEntry
	for rows.Next() {
		entry := &domain.ActivityLogEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.Description,
			&entry.Actor,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity log: %w", err)
	}

	return entries, nil
}
