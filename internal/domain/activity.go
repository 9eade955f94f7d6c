package domain

import (
	"encoding/json"
	"time"
)

// WeeklyActivity is one snapshot of a character's progress inside a
// single reset week. (CharacterID, WeekStart) is unique; refreshing
// within the same week replaces the row.
type WeeklyActivity struct {
	ID                  string          `json:"id" db:"id"`
	CharacterID         string          `json:"character_id" db:"character_id"`
	WeekStart           time.Time       `json:"week_start" db:"week_start"`
	WeekEnd             time.Time       `json:"week_end" db:"week_end"`
	MythicPlusRuns      int             `json:"mythic_plus_runs" db:"mythic_plus_runs"`
	HighestKeyLevel     int             `json:"highest_key_level" db:"highest_key_level"`
	TotalKeysCompleted  int             `json:"total_keys_completed" db:"total_keys_completed"`
	RaidBossesKilled    int             `json:"raid_bosses_killed" db:"raid_bosses_killed"`
	RaidDifficulty      *string         `json:"raid_difficulty" db:"raid_difficulty"`
	VaultMythicPlusTier int             `json:"vault_mythic_plus_tier" db:"vault_mythic_plus_tier"`
	VaultRaidTier       int             `json:"vault_raid_tier" db:"vault_raid_tier"`
	VaultPvPTier        int             `json:"vault_pvp_tier" db:"vault_pvp_tier"`
	RawData             json.RawMessage `json:"-" db:"raw_data"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// OverviewEntry joins a weekly activity row with its character and the
// owning account's battletag for the guild-wide weekly overview.
type OverviewEntry struct {
	Activity  WeeklyActivity `json:"activity"`
	Character Character      `json:"character"`
	BattleTag string         `json:"battletag"`
}

// ActivityLogEntry records a site-level event such as a member login.
type ActivityLogEntry struct {
	ID          string    `json:"id" db:"id"`
	Action      string    `json:"action" db:"action"`
	Description string    `json:"description" db:"description"`
	Actor       string    `json:"actor" db:"actor"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
