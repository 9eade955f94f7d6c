package repository

import (
	"context"
	"time"

	"github.com/sturmfeder/guild-portal/internal/domain"
)

// AccountRepository defines methods for linked Battle.net accounts
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.BattleNetAccount, error)
	GetByBattleNetID(ctx context.Context, battleNetID int64) (*domain.BattleNetAccount, error)
	// Upsert creates the account on first login and updates tokens,
	// battletag and last_login on every subsequent one, keyed on the
	// Battle.net id.
	Upsert(ctx context.Context, account *domain.BattleNetAccount) error
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error
}

// CharacterRepository defines methods for roster characters
type CharacterRepository interface {
	// Upsert is keyed on (account_id, character_id).
	Upsert(ctx context.Context, character *domain.Character) error
	// GetOwned returns ErrNotFound unless the character exists and
	// belongs to the account.
	GetOwned(ctx context.Context, accountID, id string) (*domain.Character, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Character, error)
	UpdateProfile(ctx context.Context, character *domain.Character) error
	// ClearAndSetMain clears is_main on every character of the account
	// and sets it on the target, in one transaction.
	ClearAndSetMain(ctx context.Context, accountID, id string) error
}

// ActivityRepository defines methods for weekly activity snapshots
type ActivityRepository interface {
	// Upsert is keyed on (character_id, week_start).
	Upsert(ctx context.Context, activity *domain.WeeklyActivity) error
	GetByWeek(ctx context.Context, characterID string, weekStart time.Time) (*domain.WeeklyActivity, error)
	// ListWeekOverview returns the week's activities of main characters
	// joined with character and battletag, ordered by mythic+ runs.
	ListWeekOverview(ctx context.Context, weekStart time.Time) ([]*domain.OverviewEntry, error)
}

// EquipmentRepository defines methods for character equipment rows
type EquipmentRepository interface {
	// ReplaceForCharacter deletes the character's rows and inserts the
	// given set in one transaction.
	ReplaceForCharacter(ctx context.Context, characterID string, items []*domain.EquipmentItem) error
	ListByCharacter(ctx context.Context, characterID string) ([]*domain.EquipmentItem, error)
}

// ActivityLogRepository defines methods for the site activity log
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLogEntry) error
	ListRecent(ctx context.Context, limit int) ([]*domain.ActivityLogEntry, error)
}
