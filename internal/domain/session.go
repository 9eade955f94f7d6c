package domain

import "time"

// MemberSessionType tags JWTs issued for member sessions.
const MemberSessionType = "member"

// SessionClaims are the claims carried by a member session token.
type SessionClaims struct {
	AccountID   string `json:"account_id"`
	BattleNetID int64  `json:"battlenet_id"`
	BattleTag   string `json:"battletag"`
	Type        string `json:"type"`
	Exp         int64  `json:"exp"`
	Iat         int64  `json:"iat"`
}

// IsExpired checks if the session token is expired.
func (c SessionClaims) IsExpired() bool {
	return time.Now().Unix() > c.Exp
}
