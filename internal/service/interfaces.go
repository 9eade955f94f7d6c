package service

import (
	"context"

	"github.com/sturmfeder/guild-portal/internal/battlenet"
	"github.com/sturmfeder/guild-portal/internal/domain"
)

// ProfileClient is the Battle.net surface the services depend on,
// implemented by *battlenet.Client.
type ProfileClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*battlenet.TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*battlenet.TokenSet, error)
	UserInfo(ctx context.Context, accessToken string) (*battlenet.UserInfo, error)
	ListCharacters(ctx context.Context, accessToken string) ([]battlenet.CharacterSummary, error)
	CharacterProfile(ctx context.Context, accessToken, realmSlug, name string) (*battlenet.CharacterProfile, error)
	CharacterMedia(ctx context.Context, accessToken, realmSlug, name string) (*battlenet.CharacterMedia, error)
	CharacterEquipment(ctx context.Context, accessToken, realmSlug, name string) (*battlenet.CharacterEquipment, error)
	MythicKeystoneProfile(ctx context.Context, accessToken, realmSlug, name string) (*battlenet.MythicKeystoneProfile, error)
	RaidProgress(ctx context.Context, accessToken, realmSlug, name string) (*battlenet.RaidProgress, error)
	PvPSummary(ctx context.Context, accessToken, realmSlug, name string) (*battlenet.PvPSummary, error)
}

// LinkService orchestrates the Battle.net OAuth flow
type LinkService interface {
	// InitiateLink stores a one-time CSRF state and returns the
	// authorization URL to redirect the browser to.
	InitiateLink(ctx context.Context) (string, error)
	// HandleCallback verifies the redirect parameters, exchanges the
	// code, upserts the linked account and issues a session token.
	HandleCallback(ctx context.Context, params CallbackParams) (*CallbackResult, error)
	// GetAccount loads a linked account by internal id.
	GetAccount(ctx context.Context, accountID string) (*domain.BattleNetAccount, error)
}

// CharacterService owns the roster of a linked account
type CharacterService interface {
	List(ctx context.Context, accountID string) ([]*domain.Character, error)
	SyncAll(ctx context.Context, accountID string) ([]*domain.Character, error)
	RefreshOne(ctx context.Context, accountID, characterID string) (*domain.Character, error)
	SetMain(ctx context.Context, accountID, characterID string) (*domain.Character, error)
	Equipment(ctx context.Context, accountID, characterID string) ([]*domain.EquipmentItem, error)
}

// ActivityService derives and serves weekly vault progress
type ActivityService interface {
	Refresh(ctx context.Context, accountID, characterID string) (*domain.WeeklyActivity, error)
	Get(ctx context.Context, accountID, characterID string) (*domain.WeeklyActivity, error)
	WeeklyOverview(ctx context.Context) ([]*domain.OverviewEntry, error)
}
