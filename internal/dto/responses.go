package dto

import (
	"time"

	"github.com/sturmfeder/guild-portal/internal/domain"
)

// AccountResponse represents the linked account returned by /auth/me
type AccountResponse struct {
	ID          string `json:"id"`
	BattleNetID int64  `json:"battlenet_id"`
	BattleTag   string `json:"battletag"`
	Region      string `json:"region"`
	LastLogin   string `json:"last_login"`
	CreatedAt   string `json:"created_at"`
}

// NewAccountResponse maps a linked account onto its API representation
func NewAccountResponse(account *domain.BattleNetAccount) AccountResponse {
	return AccountResponse{
		ID:          account.ID,
		BattleNetID: account.BattleNetID,
		BattleTag:   account.BattleTag,
		Region:      account.Region,
		LastLogin:   account.LastLogin.Format(time.RFC3339),
		CreatedAt:   account.CreatedAt.Format(time.RFC3339),
	}
}

// CharacterListResponse represents a roster response
type CharacterListResponse struct {
	Characters []*domain.Character `json:"characters"`
	Count      int                 `json:"count"`
}

// EquipmentResponse represents a character's stored equipment
type EquipmentResponse struct {
	Items []*domain.EquipmentItem `json:"items"`
	Count int                     `json:"count"`
}

// OverviewResponse represents the guild-wide weekly overview
type OverviewResponse struct {
	WeekStart string                  `json:"week_start"`
	WeekEnd   string                  `json:"week_end"`
	Entries   []*domain.OverviewEntry `json:"entries"`
	Count     int                     `json:"count"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
