package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/internal/repository"
	"go.uber.org/zap"
)

// TokenLifecycle guarantees that outbound Battle.net calls use a
// non-expired access token. Callers never see the refresh protocol.
type TokenLifecycle struct {
	accounts repository.AccountRepository
	client   ProfileClient
	logger   *zap.Logger
	now      func() time.Time
}

// NewTokenLifecycle creates a new token lifecycle manager
func NewTokenLifecycle(accounts repository.AccountRepository, client ProfileClient, logger *zap.Logger) *TokenLifecycle {
	return &TokenLifecycle{
		accounts: accounts,
		client:   client,
		logger:   logger,
		now:      time.Now,
	}
}

// EnsureFreshToken returns a valid access token for the account,
// refreshing and persisting it first when the stored one is expired.
// A failed refresh surfaces as domain.ErrAuthExpired; it never falls
// back to the stale token.
func (t *TokenLifecycle) EnsureFreshToken(ctx context.Context, account *domain.BattleNetAccount) (string, error) {
	if !account.TokenExpired(t.now()) {
		return account.AccessToken, nil
	}

	tokens, err := t.client.Refresh(ctx, account.RefreshToken)
	if err != nil {
		t.logger.Warn("Battle.net token refresh failed",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to refresh access token: %w", domain.ErrAuthExpired)
	}

	if err := t.accounts.UpdateTokens(ctx, account.ID, tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt); err != nil {
		return "", fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	account.AccessToken = tokens.AccessToken
	account.RefreshToken = tokens.RefreshToken
	account.TokenExpiresAt = tokens.ExpiresAt

	return tokens.AccessToken, nil
}
