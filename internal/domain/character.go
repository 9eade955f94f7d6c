package domain

import (
	"encoding/json"
	"time"
)

// Character is one roster entry owned by a linked account. The pair
// (AccountID, CharacterID) is unique; CharacterID is the Battle.net
// character id.
type Character struct {
	ID                 string    `json:"id" db:"id"`
	AccountID          string    `json:"account_id" db:"account_id"`
	CharacterID        int64     `json:"character_id" db:"character_id"`
	Name               string    `json:"name" db:"name"`
	Realm              string    `json:"realm" db:"realm"`
	RealmSlug          string    `json:"realm_slug" db:"realm_slug"`
	Faction            string    `json:"faction" db:"faction"`
	Race               string    `json:"race" db:"race"`
	Class              string    `json:"character_class" db:"character_class"`
	ActiveSpec         *string   `json:"active_spec" db:"active_spec"`
	Gender             string    `json:"gender" db:"gender"`
	Level              int       `json:"level" db:"level"`
	AverageItemLevel   *int      `json:"average_item_level" db:"average_item_level"`
	EquippedItemLevel  *int      `json:"equipped_item_level" db:"equipped_item_level"`
	AchievementPoints  *int      `json:"achievement_points" db:"achievement_points"`
	AvatarURL          *string   `json:"avatar_url" db:"avatar_url"`
	ThumbnailURL       *string   `json:"thumbnail_url" db:"thumbnail_url"`
	IsMain             bool      `json:"is_main" db:"is_main"`
	LastLoginTimestamp *int64    `json:"last_login_timestamp" db:"last_login_timestamp"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// EquipmentItem is one equipped item slot of a character. Equipment
// has no stable natural key across refreshes, so rows are replaced
// wholesale on every character refresh.
type EquipmentItem struct {
	ID           string          `json:"id" db:"id"`
	CharacterID  string          `json:"character_id" db:"character_id"`
	Slot         string          `json:"slot" db:"slot"`
	ItemID       int64           `json:"item_id" db:"item_id"`
	ItemName     string          `json:"item_name" db:"item_name"`
	ItemLevel    int             `json:"item_level" db:"item_level"`
	Quality      *string         `json:"quality" db:"quality"`
	Enchantments json.RawMessage `json:"enchantments" db:"enchantments"`
	Gems         json.RawMessage `json:"gems" db:"gems"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}
