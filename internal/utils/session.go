package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sturmfeder/guild-portal/internal/domain"
)

// SessionManager issues and validates signed member session tokens
type SessionManager struct {
	secret        []byte
	sessionExpiry time.Duration
}

// NewSessionManager creates a new session manager
func NewSessionManager(secret string, sessionExpiry time.Duration) *SessionManager {
	return &SessionManager{
		secret:        []byte(secret),
		sessionExpiry: sessionExpiry,
	}
}

// IssueMemberToken generates a signed session token for a linked account
func (m *SessionManager) IssueMemberToken(account *domain.BattleNetAccount) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"account_id":   account.ID,
		"battlenet_id": account.BattleNetID,
		"battletag":    account.BattleTag,
		"type":         domain.MemberSessionType,
		"exp":          now.Add(m.sessionExpiry).Unix(),
		"iat":          now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ValidateMemberToken validates a session token and returns its claims
func (m *SessionManager) ValidateMemberToken(tokenString string) (*domain.SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid session token claims")
	}

	if claims["type"] != domain.MemberSessionType {
		return nil, fmt.Errorf("invalid session token type")
	}

	accountID, ok := claims["account_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid account_id in session token")
	}

	battleNetID, ok := claims["battlenet_id"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid battlenet_id in session token")
	}

	battleTag, ok := claims["battletag"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid battletag in session token")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid exp in session token")
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid iat in session token")
	}

	sessionClaims := &domain.SessionClaims{
		AccountID:   accountID,
		BattleNetID: int64(battleNetID),
		BattleTag:   battleTag,
		Type:        domain.MemberSessionType,
		Exp:         int64(exp),
		Iat:         int64(iat),
	}

	if sessionClaims.IsExpired() {
		return nil, fmt.Errorf("session token is expired")
	}

	return sessionClaims, nil
}

// SessionExpirySeconds returns the session validity window in seconds,
// used as the cookie max-age.
func (m *SessionManager) SessionExpirySeconds() int {
	return int(m.sessionExpiry.Seconds())
}
