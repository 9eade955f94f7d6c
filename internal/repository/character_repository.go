package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/pkg/database"
)

// characterRepository implements CharacterRepository interface
type characterRepository struct {
	db *database.Postgres
}

// NewCharacterRepository creates a new character repository
func NewCharacterRepository(db *database.Postgres) CharacterRepository {
	return &characterRepository{db: db}
}

const characterColumns = `id, account_id, character_id, name, realm, realm_slug, faction, race, character_class, active_spec, gender, level, average_item_level, equipped_item_level, achievement_points, avatar_url, thumbnail_url, is_main, last_login_timestamp, created_at, updated_at`

// Upsert creates or updates a roster entry keyed on (account_id,
// character_id). The is_main flag is never touched by sync upserts.
func (r *characterRepository) Upsert(ctx context.Context, character *domain.Character) error {
	if character.ID == "" {
		character.ID = uuid.New().String()
	}

	now := time.Now()
	if character.CreatedAt.IsZero() {
		character.CreatedAt = now
	}
	character.UpdatedAt = now

	query := `
		INSERT INTO characters (id, account_id, character_id, name, realm, realm_slug, faction, race, character_class, active_spec, gender, level, average_item_level, equipped_item_level, achievement_points, avatar_url, thumbnail_url, last_login_timestamp, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (account_id, character_id) DO UPDATE SET
			name = EXCLUDED.name,
			realm = EXCLUDED.realm,
			realm_slug = EXCLUDED.realm_slug,
			faction = EXCLUDED.faction,
			race = EXCLUDED.race,
			character_class = EXCLUDED.character_class,
			active_spec = EXCLUDED.active_spec,
			gender = EXCLUDED.gender,
			level = EXCLUDED.level,
			average_item_level = EXCLUDED.average_item_level,
			equipped_item_level = EXCLUDED.equipped_item_level,
			achievement_points = EXCLUDED.achievement_points,
			avatar_url = EXCLUDED.avatar_url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			last_login_timestamp = EXCLUDED.last_login_timestamp,
			updated_at = EXCLUDED.updated_at
		RETURNING id, is_main, created_at
	`

	err := r.db.DB.QueryRowContext(ctx, query,
		character.ID,
		character.AccountID,
		character.CharacterID,
		character.Name,
		character.Realm,
		character.RealmSlug,
		character.Faction,
		character.Race,
		character.Class,
		character.ActiveSpec,
		character.Gender,
		character.Level,
		character.AverageItemLevel,
		character.EquippedItemLevel,
		character.AchievementPoints,
		character.AvatarURL,
		character.ThumbnailURL,
		character.LastLoginTimestamp,
		character.CreatedAt,
		character.UpdatedAt,
	).Scan(&character.ID, &character.IsMain, &character.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("failed to upsert character: %w", ErrDuplicateCharacter)
		}
		return fmt.Errorf("failed to upsert character: %w", err)
	}

	return nil
}

// GetOwned retrieves a character only if it belongs to the account
func (r *characterRepository) GetOwned(ctx context.Context, accountID, id string) (*domain.Character, error) {
	query := fmt.Sprintf(`SELECT %s FROM characters WHERE id = $1 AND account_id = $2`, characterColumns)

	character, err := scanCharacter(r.db.DB.QueryRowContext(ctx, query, id, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("character with id %s not found for account: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}

	return character, nil
}

// ListByAccount returns the account's roster, main first, then by level
func (r *characterRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Character, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM characters
		WHERE account_id = $1
		ORDER BY is_main DESC, level DESC, name ASC
	`, characterColumns)

	rows, err := r.db.DB.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	var characters []*domain.Character
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		characters = append(characters, character)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate characters: %w", err)
	}

	return characters, nil
}

// UpdateProfile updates the fields refreshed from the profile endpoint
func (r *characterRepository) UpdateProfile(ctx context.Context, character *domain.Character) error {
	query := `
		UPDATE characters
		SET active_spec = $2, level = $3, average_item_level = $4, equipped_item_level = $5,
			achievement_points = $6, avatar_url = $7, thumbnail_url = $8, updated_at = $9
		WHERE id = $1
	`

	character.UpdatedAt = time.Now()

	result, err := r.db.DB.ExecContext(ctx, query,
		character.ID,
		character.ActiveSpec,
		character.Level,
		character.AverageItemLevel,
		character.EquippedItemLevel,
		character.AchievementPoints,
		character.AvatarURL,
		character.ThumbnailURL,
		character.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update character profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("character with id %s not found: %w", character.ID, ErrNotFound)
	}

	return nil
}

// ClearAndSetMain clears is_main across the account and sets it on the
// target inside one transaction, so a reader never observes two mains.
func (r *characterRepository) ClearAndSetMain(ctx context.Context, accountID, id string) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE characters SET is_main = FALSE, updated_at = $2 WHERE account_id = $1`,
		accountID, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to clear main flags: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE characters SET is_main = TRUE, updated_at = $3 WHERE id = $1 AND account_id = $2`,
		id, accountID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set main flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("character with id %s not found for account: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCharacter(row scanner) (*domain.Character, error) {
	character := &domain.Character{}
	var (
		activeSpec         sql.NullString
		averageItemLevel   sql.NullInt64
		equippedItemLevel  sql.NullInt64
		achievementPoints  sql.NullInt64
		avatarURL          sql.NullString
		thumbnailURL       sql.NullString
		lastLoginTimestamp sql.NullInt64
	)

	err := row.Scan(
		&character.ID,
		&character.AccountID,
		&character.CharacterID,
		&character.Name,
		&character.Realm,
		&character.RealmSlug,
		&character.Faction,
		&character.Race,
		&character.Class,
		&activeSpec,
		&character.Gender,
		&character.Level,
		&averageItemLevel,
		&equippedItemLevel,
		&achievementPoints,
		&avatarURL,
		&thumbnailURL,
		&character.IsMain,
		&lastLoginTimestamp,
		&character.CreatedAt,
		&character.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if activeSpec.Valid {
		character.ActiveSpec = &activeSpec.String
	}
	if averageItemLevel.Valid {
		v := int(averageItemLevel.Int64)
		character.AverageItemLevel = &v
	}
	if equippedItemLevel.Valid {
		v := int(equippedItemLevel.Int64)
		character.EquippedItemLevel = &v
	}
	if achievementPoints.Valid {
		v := int(achievementPoints.Int64)
		character.AchievementPoints = &v
	}
	if avatarURL.Valid {
		character.AvatarURL = &avatarURL.String
	}
	if thumbnailURL.Valid {
		character.ThumbnailURL = &thumbnailURL.String
	}
	if lastLoginTimestamp.Valid {
		character.LastLoginTimestamp = &lastLoginTimestamp.Int64
	}

	return character, nil
}
