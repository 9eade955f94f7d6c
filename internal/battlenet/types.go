package battlenet

import (
	"encoding/json"
	"time"
)

// TokenSet is the result of an authorization-code or refresh grant.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// UserInfo identifies the Battle.net account behind an access token.
type UserInfo struct {
	ID        int64  `json:"id"`
	BattleTag string `json:"battletag"`
}

// KeyedName is the common {id, name} reference used across Battle.net
// payloads.
type KeyedName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TypedName is the common {type, name} enum reference.
type TypedName struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Realm identifies a realm by display name and slug.
type Realm struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CharacterSummary is one entry of the account-wide character list.
type CharacterSummary struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Realm              Realm     `json:"realm"`
	PlayableClass      KeyedName `json:"playable_class"`
	PlayableRace       KeyedName `json:"playable_race"`
	Gender             TypedName `json:"gender"`
	Faction            TypedName `json:"faction"`
	Level              int       `json:"level"`
	LastLoginTimestamp *int64    `json:"last_login_timestamp"`
}

// CharacterProfile is the detailed character profile payload. Fields
// that may be absent upstream are pointers; consumers must default.
type CharacterProfile struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Realm              Realm      `json:"realm"`
	Faction            TypedName  `json:"faction"`
	Race               KeyedName  `json:"race"`
	CharacterClass     KeyedName  `json:"character_class"`
	ActiveSpec         *KeyedName `json:"active_spec"`
	Gender             TypedName  `json:"gender"`
	Level              int        `json:"level"`
	AchievementPoints  int        `json:"achievement_points"`
	AverageItemLevel   int        `json:"average_item_level"`
	EquippedItemLevel  int        `json:"equipped_item_level"`
	LastLoginTimestamp *int64     `json:"last_login_timestamp"`
}

// MediaAsset is one entry of a character-media payload.
type MediaAsset struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CharacterMedia is the character-media payload.
type CharacterMedia struct {
	Assets []MediaAsset `json:"assets"`
}

// AssetURL returns the URL of the asset with the given key, or "".
func (m *CharacterMedia) AssetURL(key string) string {
	if m == nil {
		return ""
	}
	for _, a := range m.Assets {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// EquippedItem is one slot of the equipment payload. Enchantments and
// sockets are kept raw; they are stored as opaque JSON.
type EquippedItem struct {
	Slot         TypedName       `json:"slot"`
	Item         KeyedName       `json:"item"`
	Name         string          `json:"name"`
	Quality      TypedName       `json:"quality"`
	Level        ItemLevel       `json:"level"`
	Enchantments json.RawMessage `json:"enchantments"`
	Sockets      json.RawMessage `json:"sockets"`
}

// ItemLevel wraps the {value, display_string} item level object.
type ItemLevel struct {
	Value int `json:"value"`
}

// CharacterEquipment is the equipment payload.
type CharacterEquipment struct {
	EquippedItems []EquippedItem `json:"equipped_items"`
}

// KeystoneRun is one best run of the current mythic+ period.
type KeystoneRun struct {
	KeystoneLevel int `json:"keystone_level"`
}

// KeystonePeriod holds the current period's best runs. BestRuns may be
// nil for characters with no mythic+ history this week.
type KeystonePeriod struct {
	BestRuns []KeystoneRun `json:"best_runs"`
}

// MythicKeystoneProfile is the mythic-keystone-profile payload.
type MythicKeystoneProfile struct {
	CurrentPeriod *KeystonePeriod `json:"current_period"`

	// Raw is the undecoded payload, kept for the weekly snapshot.
	Raw json.RawMessage `json:"-"`
}

// RaidModeProgress is the per-difficulty boss kill counter.
type RaidModeProgress struct {
	CompletedCount int `json:"completed_count"`
	TotalCount     int `json:"total_count"`
}

// RaidMode is one difficulty of a raid instance.
type RaidMode struct {
	Difficulty TypedName         `json:"difficulty"`
	Progress   *RaidModeProgress `json:"progress"`
}

// RaidInstance is one raid of an expansion.
type RaidInstance struct {
	Instance KeyedName  `json:"instance"`
	Modes    []RaidMode `json:"modes"`
}

// RaidExpansion groups raid instances by expansion. The upstream API
// orders expansions and instances oldest-first, so the last entries
// are assumed to be the current tier.
type RaidExpansion struct {
	Expansion KeyedName      `json:"expansion"`
	Instances []RaidInstance `json:"instances"`
}

// RaidProgress is the encounters/raids payload.
type RaidProgress struct {
	Expansions []RaidExpansion `json:"expansions"`

	Raw json.RawMessage `json:"-"`
}

// PvPSummary is the pvp-summary payload. The upstream figures are
// season-to-date totals, not weekly deltas.
type PvPSummary struct {
	HonorLevel int `json:"honor_level"`

	Raw json.RawMessage `json:"-"`
}
