package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/internal/repository"
	"github.com/sturmfeder/guild-portal/internal/utils"
	"go.uber.org/zap"
)

// StateStore is the one-time CSRF state storage the linker depends on,
// implemented by *OAuthStateStore.
type StateStore interface {
	Put(ctx context.Context, state string) error
	Consume(ctx context.Context, state string) (bool, error)
}

// CallbackParams are the query parameters of the OAuth redirect.
type CallbackParams struct {
	Code       string
	State      string
	ErrorParam string
}

// CallbackResult is a successful login: the issued session token and
// the linked account it belongs to.
type CallbackResult struct {
	SessionToken string
	Account      *domain.BattleNetAccount
}

// linkService implements LinkService interface
type linkService struct {
	accounts    repository.AccountRepository
	activityLog repository.ActivityLogRepository
	client      ProfileClient
	states      StateStore
	sessions    *utils.SessionManager
	region      string
	logger      *zap.Logger
}

// NewLinkService creates a new account link service
func NewLinkService(
	accounts repository.AccountRepository,
	activityLog repository.ActivityLogRepository,
	client ProfileClient,
	states StateStore,
	sessions *utils.SessionManager,
	region string,
	logger *zap.Logger,
) LinkService {
	return &linkService{
		accounts:    accounts,
		activityLog: activityLog,
		client:      client,
		states:      states,
		sessions:    sessions,
		region:      region,
		logger:      logger,
	}
}

// InitiateLink generates and stores a one-time CSRF state and returns
// the Battle.net authorization URL.
func (s *linkService) InitiateLink(ctx context.Context) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	state := hex.EncodeToString(buf)

	if err := s.states.Put(ctx, state); err != nil {
		return "", err
	}

	return s.client.AuthCodeURL(state), nil
}

// HandleCallback completes the OAuth flow. The state check happens
// before any token exchange; a mismatch aborts the flow without ever
// contacting the token endpoint.
func (s *linkService) HandleCallback(ctx context.Context, params CallbackParams) (*CallbackResult, error) {
	if params.ErrorParam != "" {
		return nil, fmt.Errorf("provider returned %q: %w", params.ErrorParam, domain.ErrOAuthDenied)
	}
	if params.Code == "" || params.State == "" {
		return nil, fmt.Errorf("code or state missing from callback: %w", domain.ErrMissingParameters)
	}

	ok, err := s.states.Consume(ctx, params.State)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("state does not match a pending login: %w", domain.ErrInvalidState)
	}

	tokens, err := s.client.Exchange(ctx, params.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	info, err := s.client.UserInfo(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	account := &domain.BattleNetAccount{
		BattleNetID:    info.ID,
		BattleTag:      info.BattleTag,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		TokenExpiresAt: tokens.ExpiresAt,
		Region:         s.region,
		LastLogin:      time.Now(),
	}

	if err := s.accounts.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}

	if err := s.activityLog.Create(ctx, &domain.ActivityLogEntry{
		Action:      "member_login",
		Description: "Member logged in via Battle.net",
		Actor:       account.BattleTag,
	}); err != nil {
		// The login itself succeeded; a missing log row is not fatal.
		s.logger.Warn("failed to write activity log entry", zap.Error(err))
	}

	sessionToken, err := s.sessions.IssueMemberToken(account)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.logger.Info("member logged in",
		zap.Int64("battlenet_id", account.BattleNetID),
		zap.String("battletag", account.BattleTag),
	)

	return &CallbackResult{
		SessionToken: sessionToken,
		Account:      account,
	}, nil
}

// GetAccount loads a linked account by internal id
func (s *linkService) GetAccount(ctx context.Context, accountID string) (*domain.BattleNetAccount, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
		}
		return nil, err
	}
	return account, nil
}
