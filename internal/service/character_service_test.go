package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sturmfeder/guild-portal/internal/battlenet"
	"github.com/sturmfeder/guild-portal/internal/domain"
)

func seedAccount(t *testing.T, accounts *memAccounts) *domain.BattleNetAccount {
	t.Helper()
	account := &domain.BattleNetAccount{
		BattleNetID:    555,
		BattleTag:      "Foo#1234",
		AccessToken:    "valid-token",
		RefreshToken:   "refresh-token",
		TokenExpiresAt: time.Now().Add(time.Hour),
		Region:         "eu",
	}
	require.NoError(t, accounts.Upsert(context.Background(), account))
	return account
}

func summaryFor(name string, id int64) battlenet.CharacterSummary {
	return battlenet.CharacterSummary{
		ID:    id,
		Name:  name,
		Realm: battlenet.Realm{Name: "Blackrock", Slug: "blackrock"},
		PlayableClass: battlenet.KeyedName{ID: 1, Name: "Warrior"},
		PlayableRace:  battlenet.KeyedName{ID: 2, Name: "Orc"},
		Gender:        battlenet.TypedName{Type: "MALE"},
		Faction:       battlenet.TypedName{Type: "HORDE"},
		Level:         80,
	}
}

func profileFor(name string) *battlenet.CharacterProfile {
	spec := battlenet.KeyedName{ID: 71, Name: "Arms"}
	return &battlenet.CharacterProfile{
		Name:              name,
		Level:             80,
		ActiveSpec:        &spec,
		AverageItemLevel:  620,
		EquippedItemLevel: 618,
		AchievementPoints: 12345,
	}
}

func newTestCharacterService(accounts *memAccounts, characters *memCharacters, equipment *memEquipment, client *fakeClient) CharacterService {
	tokens := NewTokenLifecycle(accounts, client, testLogger())
	return NewCharacterService(accounts, characters, equipment, client, tokens, testLogger())
}

func TestSyncAll_UpsertsEveryCharacter(t *testing.T) {
	accounts := newMemAccounts()
	account := seedAccount(t, accounts)
	characters := newMemCharacters()

	client := &fakeClient{
		summaries: []battlenet.CharacterSummary{
			summaryFor("Thrall", 100),
			summaryFor("Jaina", 101),
		},
		profiles: map[string]*battlenet.CharacterProfile{
			"Thrall": profileFor("Thrall"),
			"Jaina":  profileFor("Jaina"),
		},
		media: map[string]*battlenet.CharacterMedia{
			"Thrall": {Assets: []battlenet.MediaAsset{
				{Key: "avatar", Value: "https://render.example/avatar.jpg"},
				{Key: "inset", Value: "https://render.example/inset.jpg"},
			}},
		},
	}

	svc := newTestCharacterService(accounts, characters, newMemEquipment(), client)

	synced, err := svc.SyncAll(context.Background(), account.ID)
	require.NoError(t, err)
	require.Len(t, synced, 2)

	byName := map[string]*domain.Character{}
	for _, c := range synced {
		byName[c.Name] = c
	}

	thrall := byName["Thrall"]
	require.NotNil(t, thrall)
	assert.Equal(t, "Warrior", thrall.Class)
	assert.Equal(t, "blackrock", thrall.RealmSlug)
	require.NotNil(t, thrall.ActiveSpec)
	assert.Equal(t, "Arms", *thrall.ActiveSpec)
	require.NotNil(t, thrall.AvatarURL)
	assert.Equal(t, "https://render.example/avatar.jpg", *thrall.AvatarURL)
	require.NotNil(t, thrall.ThumbnailURL)
	assert.Equal(t, "https://render.example/inset.jpg", *thrall.ThumbnailURL)

	jaina := byName["Jaina"]
	require.NotNil(t, jaina)
	assert.Nil(t, jaina.AvatarURL, "no media payload leaves the URL unset")
}

func TestSyncAll_IsIdempotent(t *testing.T) {
	accounts := newMemAccounts()
	account := seedAccount(t, accounts)
	characters := newMemCharacters()

	client := &fakeClient{
		summaries: []battlenet.CharacterSummary{summaryFor("Thrall", 100)},
		profiles:  map[string]*battlenet.CharacterProfile{"Thrall": profileFor("Thrall")},
	}

	svc := newTestCharacterService(accounts, characters, newMemEquipment(), client)

	first, err := svc.SyncAll(context.Background(), account.ID)
	require.NoError(t, err)
	second, err := svc.SyncAll(context.Background(), account.ID)
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID, "repeat sync must reuse the existing row")
	assert.Len(t, characters.byID, 1)
}

func TestSyncAll_SkipsFailingCharacter(t *testing.T) {
	accounts := newMemAccounts()
	account := seedAccount(t, accounts)
	characters := newMemCharacters()

	client := &fakeClient{
		summaries: []battlenet.CharacterSummary{
			summaryFor("Thrall", 100),
			summaryFor("Broken", 101),
		},
		profiles: map[string]*battlenet.CharacterProfile{"Thrall": profileFor("Thrall")},
		profileErr: map[string]error{
			"Broken": &battlenet.UpstreamError{StatusCode: 500, Body: "oops"},
		},
	}

	svc := newTestCharacterService(accounts, characters, newMemEquipment(), client)

	synced, err := svc.SyncAll(context.Background(), account.ID)
	require.NoError(t, err, "one failing character must not abort the batch")
	require.Len(t, synced, 1)
	assert.Equal(t, "Thrall", synced[0].Name)
}

func TestSyncAll_PreservesMainFlag(t *testing.T) {
	accounts := newMemAccounts()
	account := seedAccount(t, accounts)
	characters := newMemCharacters()

	client := &fakeClient{
		summaries: []battlenet.CharacterSummary{summaryFor("Thrall", 100)},
		profiles:  map[string]*battlenet.CharacterProfile{"Thrall": profileFor("Thrall")},
	}

	svc := newTestCharacterService(accounts, characters, newMemEquipment(), client)

	first, err := svc.SyncAll(context.Background(), account.ID)
	require.NoError(t, err)

	_, err = svc.SetMain(context.Background(), account.ID, first[0].ID)
	require.NoError(t, err)

	second, err := svc.SyncAll(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, second[0].IsMain, "sync must not clear the main flag")
}

func TestSetMain_AtMostOneMain(t *testing.T) {
	accounts := newMemAccounts()
	account := seedAccount(t, accounts)
	characters := newMemCharacters()

	client := &fakeClient{
		summaries: []battlenet.CharacterSummary{
			summaryFor("Thrall", 100),
			summaryFor("Jaina", 101),
		},
		profiles: map[string]*battlenet.CharacterProfile{
			"Thrall": profileFor("Thrall"),
			"Jaina":  profileFor("Jaina"),
		},
	}

	svc := newTestCharacterService(accounts, characters, newMemEquipment(), client)

	synced, err := svc.SyncAll(context.Background(), account.ID)
	require.NoError(t, err)
	require.Len(t, synced, 2)

	_, err = svc.SetMain(context.Background(), account.ID, synced[0].ID)
	require.NoError(t, err)
	_, err = svc.SetMain(context.Background(), account.ID, synced[1].ID)
	require.NoError(t, err)

	assert.Equal(t, 1, characters.mains(account.ID))
}

func TestSetMain_UnownedCharacter(t *testing.T) {
	accounts := newMemAccounts()
	account := seedAccount(t, accounts)
	svc := newTestCharacterService(accounts, newMemCharacters(), newMemEquipment(), &fakeClient{})

	_, err := svc.SetMain(context.Background(), account.ID, "not-yours")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRefreshOne_UpdatesProfileAndReplacesEquipment(t *testing.T) {
	accounts := newMemAccounts()
	account := seedAccount(t, accounts)
	characters := newMemCharacters()
	equipment := newMemEquipment()

	client := &fakeClient{
		summaries: []battlenet.CharacterSummary{summaryFor("Thrall", 100)},
		profiles:  map[string]*battlenet.CharacterProfile{"Thrall": profileFor("Thrall")},
		equipment: map[string]*battlenet.CharacterEquipment{
			"Thrall": {EquippedItems: []battlenet.EquippedItem{
				{
					Slot:    battlenet.TypedName{Type: "HEAD", Name: "Head"},
					Item:    battlenet.KeyedName{ID: 2001},
					Name:    "Crown of Ambition",
					Quality: battlenet.TypedName{Type: "EPIC"},
					Level:   battlenet.ItemLevel{Value: 626},
				},
			}},
		},
	}

	svc := newTestCharacterService(accounts, characters, equipment, client)

	synced, err := svc.SyncAll(context.Background(), account.ID)
	require.NoError(t, err)

	refreshed, err := svc.RefreshOne(context.Background(), account.ID, synced[0].ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.AverageItemLevel)
	assert.Equal(t, 620, *refreshed.AverageItemLevel)

	items, err := svc.Equipment(context.Background(), account.ID, synced[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "HEAD", items[0].Slot)
	assert.Equal(t, int64(2001), items[0].ItemID)
	require.NotNil(t, items[0].Quality)
	assert.Equal(t, "EPIC", *items[0].Quality)
	assert.Equal(t, 1, equipment.replaces)
}

func TestRefreshOne_UnownedCharacter(t *testing.T) {
	accounts := newMemAccounts()
	account := seedAccount(t, accounts)
	svc := newTestCharacterService(accounts, newMemCharacters(), newMemEquipment(), &fakeClient{})

	_, err := svc.RefreshOne(context.Background(), account.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
