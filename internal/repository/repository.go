package repository

import (
	"github.com/sturmfeder/guild-portal/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Account     AccountRepository
	Character   CharacterRepository
	Activity    ActivityRepository
	Equipment   EquipmentRepository
	ActivityLog ActivityLogRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Account:     NewAccountRepository(db),
		Character:   NewCharacterRepository(db),
		Activity:    NewActivityRepository(db),
		Equipment:   NewEquipmentRepository(db),
		ActivityLog: NewActivityLogRepository(db),
	}
}
