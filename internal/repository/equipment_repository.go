package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/pkg/database"
)

// equipmentRepository implements EquipmentRepository interface
type equipmentRepository struct {
	db *database.Postgres
}

// NewEquipmentRepository creates a new equipment repository
func NewEquipmentRepository(db *database.Postgres) EquipmentRepository {
	return &equipmentRepository{db: db}
}

// ReplaceForCharacter deletes and re-inserts the character's equipment
// in one transaction. Equipment has no stable natural key across
// refreshes, so the rows are replaced wholesale.
func (r *equipmentRepository) ReplaceForCharacter(ctx context.Context, characterID string, items []*domain.EquipmentItem) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM character_equipment WHERE character_id = $1`, characterID,
	); err != nil {
		return fmt.Errorf("failed to delete old equipment: %w", err)
	}

	query := `
		INSERT INTO character_equipment (id, character_id, slot, item_id, item_name, item_level, quality, enchantments, gems, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.CharacterID = characterID
		item.CreatedAt = now

		var enchantments, gems interface{}
		if len(item.Enchantments) > 0 {
			enchantments = []byte(item.Enchantments)
		}
		if len(item.Gems) > 0 {
			gems = []byte(item.Gems)
		}

		if _, err := tx.ExecContext(ctx, query,
			item.ID,
			item.CharacterID,
			item.Slot,
			item.ItemID,
			item.ItemName,
			item.ItemLevel,
			item.Quality,
			enchantments,
			gems,
			item.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert equipment item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByCharacter returns the character's equipment rows by slot
func (r *equipmentRepository) ListByCharacter(ctx context.Context, characterID string) ([]*domain.EquipmentItem, error) {
	query := `
		SELECT id, character_id, slot, item_id, item_name, item_level, quality, enchantments, gems, created_at
		FROM character_equipment
		WHERE character_id = $1
		ORDER BY slot ASC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer rows.Close()

	var items []*domain.EquipmentItem
	for rows.Next() {
		item := &domain.EquipmentItem{}
		var (
			quality      sql.NullString
			enchantments []byte
			gems         []byte
		)

		if err := rows.Scan(
			&item.ID,
			&item.CharacterID,
			&item.Slot,
			&item.ItemID,
			&item.ItemName,
			&item.ItemLevel,
			&quality,
			&enchantments,
			&gems,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan equipment item: %w", err)
		}

		if quality.Valid {
			item.Quality = &quality.String
		}
		item.Enchantments = enchantments
		item.Gems = gems

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate equipment: %w", err)
	}

	return items, nil
}
