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

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *database.Postgres
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.Postgres) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, battlenet_id, battletag, access_token, refresh_token, token_expires_at, region, last_login, created_at, updated_at`

// GetByID retrieves an account by its internal id
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.BattleNetAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM battle_net_accounts WHERE id = $1`, accountColumns)

	account, err := r.scanAccount(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}

	return account, nil
}

// GetByBattleNetID retrieves an account by Battle.net id
func (r *accountRepository) GetByBattleNetID(ctx context.Context, battleNetID int64) (*domain.BattleNetAccount, error) {
	query := fmt.Sprintf(`SELECT %s FROM battle_net_accounts WHERE battlenet_id = $1`, accountColumns)

	account, err := r.scanAccount(r.db.DB.QueryRowContext(ctx, query, battleNetID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with battle.net id %d not found: %w", battleNetID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by battle.net id: %w", err)
	}

	return account, nil
}

// Upsert creates or updates the account keyed on battlenet_id. The
// update path keeps the stored refresh token when the new one is empty
// (Battle.net does not reissue it on every login).
func (r *accountRepository) Upsert(ctx context.Context, account *domain.BattleNetAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.LastLogin.IsZero() {
		account.LastLogin = now
	}
	account.UpdatedAt = now

	query := `
		INSERT INTO battle_net_accounts (id, battlenet_id, battletag, access_token, refresh_token, token_expires_at, region, last_login, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (battlenet_id) DO UPDATE SET
			battletag = EXCLUDED.battletag,
			access_token = EXCLUDED.access_token,
			refresh_token = CASE WHEN EXCLUDED.refresh_token = '' THEN battle_net_accounts.refresh_token ELSE EXCLUDED.refresh_token END,
			token_expires_at = EXCLUDED.token_expires_at,
			region = EXCLUDED.region,
			last_login = EXCLUDED.last_login,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := r.db.DB.QueryRowContext(ctx, query,
		account.ID,
		account.BattleNetID,
		account.BattleTag,
		account.AccessToken,
		account.RefreshToken,
		account.TokenExpiresAt,
		account.Region,
		account.LastLogin,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("failed to upsert account: %w", ErrDuplicateAccount)
		}
		return fmt.Errorf("failed to upsert account: %w", err)
	}

	return nil
}

// UpdateTokens overwrites the token fields after a refresh grant
func (r *accountRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE battle_net_accounts
		SET access_token = $2, refresh_token = $3, token_expires_at = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, id, accessToken, refreshToken, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("account with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}

func (r *accountRepository) scanAccount(row *sql.Row) (*domain.BattleNetAccount, error) {
	account := &domain.BattleNetAccount{}

	err := row.Scan(
		&account.ID,
		&account.BattleNetID,
		&account.BattleTag,
		&account.AccessToken,
		&account.RefreshToken,
		&account.TokenExpiresAt,
		&account.Region,
		&account.LastLogin,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return account, nil
}
