package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateAccount is returned when a second account row would
	// be created for the same Battle.net id
	ErrDuplicateAccount = errors.New("account with this battle.net id already exists")

	// ErrDuplicateCharacter is returned when a second character row
	// would be created for the same (account, character id) pair
	ErrDuplicateCharacter = errors.New("character already exists for this account")

	// ErrDuplicateActivity is returned when a second weekly activity
	// row would be created for the same (character, week start) pair
	ErrDuplicateActivity = errors.New("weekly activity already exists for this week")
)
