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

// activityRepository implements ActivityRepository interface
type activityRepository struct {
	db *database.Postgres
}

// NewActivityRepository creates a new weekly activity repository
func NewActivityRepository(db *database.Postgres) ActivityRepository {
	return &activityRepository{db: db}
}

// week_start and week_end are DATE columns; binding formatted dates
// keeps the unique key stable regardless of session time zones.
const dateLayout = "2006-01-02"

// Upsert creates or replaces the snapshot keyed on (character_id,
// week_start). All derived fields and the raw blob are overwritten.
func (r *activityRepository) Upsert(ctx context.Context, activity *domain.WeeklyActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}

	now := time.Now()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = now
	}
	activity.UpdatedAt = now

	query := `
		INSERT INTO weekly_activities (id, character_id, week_start, week_end, mythic_plus_runs, highest_key_level, total_keys_completed, raid_bosses_killed, raid_difficulty, vault_mythic_plus_tier, vault_raid_tier, vault_pvp_tier, raw_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (character_id, week_start) DO UPDATE SET
			week_end = EXCLUDED.week_end,
			mythic_plus_runs = EXCLUDED.mythic_plus_runs,
			highest_key_level = EXCLUDED.highest_key_level,
			total_keys_completed = EXCLUDED.total_keys_completed,
			raid_bosses_killed = EXCLUDED.raid_bosses_killed,
			raid_difficulty = EXCLUDED.raid_difficulty,
			vault_mythic_plus_tier = EXCLUDED.vault_mythic_plus_tier,
			vault_raid_tier = EXCLUDED.vault_raid_tier,
			vault_pvp_tier = EXCLUDED.vault_pvp_tier,
			raw_data = EXCLUDED.raw_data,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	var rawData interface{}
	if len(activity.RawData) > 0 {
		rawData = []byte(activity.RawData)
	}

	err := r.db.DB.QueryRowContext(ctx, query,
		activity.ID,
		activity.CharacterID,
		activity.WeekStart.Format(dateLayout),
		activity.WeekEnd.Format(dateLayout),
		activity.MythicPlusRuns,
		activity.HighestKeyLevel,
		activity.TotalKeysCompleted,
		activity.RaidBossesKilled,
		activity.RaidDifficulty,
		activity.VaultMythicPlusTier,
		activity.VaultRaidTier,
		activity.VaultPvPTier,
		rawData,
		activity.CreatedAt,
		activity.UpdatedAt,
	).Scan(&activity.ID, &activity.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("failed to upsert weekly activity: %w", ErrDuplicateActivity)
		}
		return fmt.Errorf("failed to upsert weekly activity: %w", err)
	}

	return nil
}

// GetByWeek retrieves the snapshot for one character and week start
func (r *activityRepository) GetByWeek(ctx context.Context, characterID string, weekStart time.Time) (*domain.WeeklyActivity, error) {
	query := `
		SELECT id, character_id, week_start, week_end, mythic_plus_runs, highest_key_level, total_keys_completed, raid_bosses_killed, raid_difficulty, vault_mythic_plus_tier, vault_raid_tier, vault_pvp_tier, raw_data, created_at, updated_at
		FROM weekly_activities
		WHERE character_id = $1 AND week_start = $2
	`

	activity := &domain.WeeklyActivity{}
	var (
		raidDifficulty sql.NullString
		rawData        []byte
	)

	err := r.db.DB.QueryRowContext(ctx, query, characterID, weekStart.Format(dateLayout)).Scan(
		&activity.ID,
		&activity.CharacterID,
		&activity.WeekStart,
		&activity.WeekEnd,
		&activity.MythicPlusRuns,
		&activity.HighestKeyLevel,
		&activity.TotalKeysCompleted,
		&activity.RaidBossesKilled,
		&raidDifficulty,
		&activity.VaultMythicPlusTier,
		&activity.VaultRaidTier,
		&activity.VaultPvPTier,
		&rawData,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("weekly activity not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get weekly activity: %w", err)
	}

	if raidDifficulty.Valid {
		activity.RaidDifficulty = &raidDifficulty.String
	}
	activity.RawData = rawData

	return activity, nil
}

// ListWeekOverview joins the week's snapshots with their character and
// the owning account's battletag, main characters only.
func (r *activityRepository) ListWeekOverview(ctx context.Context, weekStart time.Time) ([]*domain.OverviewEntry, error) {
	query := fmt.Sprintf(`
		SELECT a.id, a.character_id, a.week_start, a.week_end, a.mythic_plus_runs, a.highest_key_level, a.total_keys_completed, a.raid_bosses_killed, a.raid_difficulty, a.vault_mythic_plus_tier, a.vault_raid_tier, a.vault_pvp_tier, a.created_at, a.updated_at,
			%s, u.battletag
		FROM weekly_activities a
		JOIN characters c ON c.id = a.character_id
		JOIN battle_net_accounts u ON u.id = c.account_id
		WHERE a.week_start = $1 AND c.is_main = TRUE
		ORDER BY a.mythic_plus_runs DESC, a.raid_bosses_killed DESC
	`, prefixedCharacterColumns("c"))

	rows, err := r.db.DB.QueryContext(ctx, query, weekStart.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly overview: %w", err)
	}
	defer rows.Close()

	var entries []*domain.OverviewEntry
	for rows.Next() {
		entry, err := scanOverviewEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overview entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overview entries: %w", err)
	}

	return entries, nil
}

func prefixedCharacterColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.account_id, %[1]s.character_id, %[1]s.name, %[1]s.realm, %[1]s.realm_slug, %[1]s.faction, %[1]s.race, %[1]s.character_class, %[1]s.active_spec, %[1]s.gender, %[1]s.level, %[1]s.average_item_level, %[1]s.equipped_item_level, %[1]s.achievement_points, %[1]s.avatar_url, %[1]s.thumbnail_url, %[1]s.is_main, %[1]s.last_login_timestamp, %[1]s.created_at, %[1]s.updated_at`, alias)
}

func scanOverviewEntry(rows *sql.Rows) (*domain.OverviewEntry, error) {
	entry := &domain.OverviewEntry{}
	var (
		raidDifficulty     sql.NullString
		activeSpec         sql.NullString
		averageItemLevel   sql.NullInt64
		equippedItemLevel  sql.NullInt64
		achievementPoints  sql.NullInt64
		avatarURL          sql.NullString
		thumbnailURL       sql.NullString
		lastLoginTimestamp sql.NullInt64
	)

	err := rows.Scan(
		&entry.Activity.ID,
		&entry.Activity.CharacterID,
		&entry.Activity.WeekStart,
		&entry.Activity.WeekEnd,
		&entry.Activity.MythicPlusRuns,
		&entry.Activity.HighestKeyLevel,
		&entry.Activity.TotalKeysCompleted,
		&entry.Activity.RaidBossesKilled,
		&raidDifficulty,
		&entry.Activity.VaultMythicPlusTier,
		&entry.Activity.VaultRaidTier,
		&entry.Activity.VaultPvPTier,
		&entry.Activity.CreatedAt,
		&entry.Activity.UpdatedAt,
		&entry.Character.ID,
		&entry.Character.AccountID,
		&entry.Character.CharacterID,
		&entry.Character.Name,
		&entry.Character.Realm,
		&entry.Character.RealmSlug,
		&entry.Character.Faction,
		&entry.Character.Race,
		&entry.Character.Class,
		&activeSpec,
		&entry.Character.Gender,
		&entry.Character.Level,
		&averageItemLevel,
		&equippedItemLevel,
		&achievementPoints,
		&avatarURL,
		&thumbnailURL,
		&entry.Character.IsMain,
		&lastLoginTimestamp,
		&entry.Character.CreatedAt,
		&entry.Character.UpdatedAt,
		&entry.BattleTag,
	)
	if err != nil {
		return nil, err
	}

	if raidDifficulty.Valid {
		entry.Activity.RaidDifficulty = &raidDifficulty.String
	}
	if activeSpec.Valid {
		entry.Character.ActiveSpec = &activeSpec.String
	}
	if averageItemLevel.Valid {
		v := int(averageItemLevel.Int64)
		entry.Character.AverageItemLevel = &v
	}
	if equippedItemLevel.Valid {
		v := int(equippedItemLevel.Int64)
		entry.Character.EquippedItemLevel = &v
	}
	if achievementPoints.Valid {
		v := int(achievementPoints.Int64)
		entry.Character.AchievementPoints = &v
	}
	if avatarURL.Valid {
		entry.Character.AvatarURL = &avatarURL.String
	}
	if thumbnailURL.Valid {
		entry.Character.ThumbnailURL = &thumbnailURL.String
	}
	if lastLoginTimestamp.Valid {
		entry.Character.LastLoginTimestamp = &lastLoginTimestamp.Int64
	}

	return entry, nil
}
