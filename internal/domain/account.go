package domain

import "time"

// BattleNetAccount represents a Battle.net identity linked to the site.
// Exactly one row exists per Battle.net ID; tokens and battletag are
// overwritten on every successful login.
type BattleNetAccount struct {
	ID             string    `json:"id" db:"id"`
	BattleNetID    int64     `json:"battlenet_id" db:"battlenet_id"`
	BattleTag      string    `json:"battletag" db:"battletag"`
	AccessToken    string    `json:"-" db:"access_token"`
	RefreshToken   string    `json:"-" db:"refresh_token"`
	TokenExpiresAt time.Time `json:"-" db:"token_expires_at"`
	Region         string    `json:"region" db:"region"`
	LastLogin      time.Time `json:"last_login" db:"last_login"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TokenExpired reports whether the stored access token must be
// refreshed before the next Battle.net call.
func (a *BattleNetAccount) TokenExpired(now time.Time) bool {
	return !a.TokenExpiresAt.After(now)
}
