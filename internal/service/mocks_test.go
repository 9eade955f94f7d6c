package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sturmfeder/guild-portal/internal/battlenet"
	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/internal/repository"
	"go.uber.org/zap"
)

// In-memory repository fakes mirroring the SQL repositories' contracts.

type memAccounts struct {
	mu           sync.Mutex
	byID         map[string]*domain.BattleNetAccount
	upsertCalls  int
	tokenUpdates int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[string]*domain.BattleNetAccount)}
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*domain.BattleNetAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, repository.ErrNotFound)
	}
	copied := *account
	return &copied, nil
}

func (m *memAccounts) GetByBattleNetID(_ context.Context, battleNetID int64) (*domain.BattleNetAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byID {
		if account.BattleNetID == battleNetID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("battle.net id %d: %w", battleNetID, repository.ErrNotFound)
}

func (m *memAccounts) Upsert(_ context.Context, account *domain.BattleNetAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++

	for _, existing := range m.byID {
		if existing.BattleNetID == account.BattleNetID {
			account.ID = existing.ID
			account.CreatedAt = existing.CreatedAt
			if account.RefreshToken == "" {
				account.RefreshToken = existing.RefreshToken
			}
			copied := *account
			m.byID[existing.ID] = &copied
			return nil
		}
	}

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.CreatedAt = time.Now()
	copied := *account
	m.byID[account.ID] = &copied
	return nil
}

func (m *memAccounts) UpdateTokens(_ context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenUpdates++

	account, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("account %s: %w", id, repository.ErrNotFound)
	}
	account.AccessToken = accessToken
	account.RefreshToken = refreshToken
	account.TokenExpiresAt = expiresAt
	return nil
}

type memCharacters struct {
	mu   sync.Mutex
	byID map[string]*domain.Character
}

func newMemCharacters() *memCharacters {
	return &memCharacters{byID: make(map[string]*domain.Character)}
}

func (m *memCharacters) Upsert(_ context.Context, character *domain.Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.byID {
		if existing.AccountID == character.AccountID && existing.CharacterID == character.CharacterID {
			character.ID = existing.ID
			character.IsMain = existing.IsMain
			character.CreatedAt = existing.CreatedAt
			copied := *character
			m.byID[existing.ID] = &copied
			return nil
		}
	}

	if character.ID == "" {
		character.ID = uuid.New().String()
	}
	character.CreatedAt = time.Now()
	copied := *character
	m.byID[character.ID] = &copied
	return nil
}

func (m *memCharacters) GetOwned(_ context.Context, accountID, id string) (*domain.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	character, ok := m.byID[id]
	if !ok || character.AccountID != accountID {
		return nil, fmt.Errorf("character %s: %w", id, repository.ErrNotFound)
	}
	copied := *character
	return &copied, nil
}

func (m *memCharacters) ListByAccount(_ context.Context, accountID string) ([]*domain.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var characters []*domain.Character
	for _, character := range m.byID {
		if character.AccountID == accountID {
			copied := *character
			characters = append(characters, &copied)
		}
	}
	return characters, nil
}

func (m *memCharacters) UpdateProfile(_ context.Context, character *domain.Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[character.ID]
	if !ok {
		return fmt.Errorf("character %s: %w", character.ID, repository.ErrNotFound)
	}
	existing.ActiveSpec = character.ActiveSpec
	existing.Level = character.Level
	existing.AverageItemLevel = character.AverageItemLevel
	existing.EquippedItemLevel = character.EquippedItemLevel
	existing.AchievementPoints = character.AchievementPoints
	existing.AvatarURL = character.AvatarURL
	existing.ThumbnailURL = character.ThumbnailURL
	return nil
}

func (m *memCharacters) ClearAndSetMain(_ context.Context, accountID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.byID[id]
	if !ok || target.AccountID != accountID {
		return fmt.Errorf("character %s: %w", id, repository.ErrNotFound)
	}
	for _, character := range m.byID {
		if character.AccountID == accountID {
			character.IsMain = false
		}
	}
	target.IsMain = true
	return nil
}

func (m *memCharacters) mains(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, character := range m.byID {
		if character.AccountID == accountID && character.IsMain {
			count++
		}
	}
	return count
}

type activityKey struct {
	characterID string
	weekStart   string
}

type memActivities struct {
	mu     sync.Mutex
	byKey  map[activityKey]*domain.WeeklyActivity
	writes int
}

func newMemActivities() *memActivities {
	return &memActivities{byKey: make(map[activityKey]*domain.WeeklyActivity)}
}

func (m *memActivities) Upsert(_ context.Context, activity *domain.WeeklyActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++

	key := activityKey{activity.CharacterID, activity.WeekStart.Format("2006-01-02")}
	if existing, ok := m.byKey[key]; ok {
		activity.ID = existing.ID
		activity.CreatedAt = existing.CreatedAt
	} else if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	copied := *activity
	m.byKey[key] = &copied
	return nil
}

func (m *memActivities) GetByWeek(_ context.Context, characterID string, weekStart time.Time) (*domain.WeeklyActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	activity, ok := m.byKey[activityKey{characterID, weekStart.Format("2006-01-02")}]
	if !ok {
		return nil, fmt.Errorf("weekly activity: %w", repository.ErrNotFound)
	}
	copied := *activity
	return &copied, nil
}

func (m *memActivities) ListWeekOverview(_ context.Context, weekStart time.Time) ([]*domain.OverviewEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []*domain.OverviewEntry
	for key, activity := range m.byKey {
		if key.weekStart == weekStart.Format("2006-01-02") {
			entries = append(entries, &domain.OverviewEntry{Activity: *activity})
		}
	}
	return entries, nil
}

type memEquipment struct {
	mu          sync.Mutex
	byCharacter map[string][]*domain.EquipmentItem
	replaces    int
}

func newMemEquipment() *memEquipment {
	return &memEquipment{byCharacter: make(map[string][]*domain.EquipmentItem)}
}

func (m *memEquipment) ReplaceForCharacter(_ context.Context, characterID string, items []*domain.EquipmentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaces++
	m.byCharacter[characterID] = items
	return nil
}

func (m *memEquipment) ListByCharacter(_ context.Context, characterID string) ([]*domain.EquipmentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byCharacter[characterID], nil
}

type memActivityLog struct {
	mu      sync.Mutex
	entries []*domain.ActivityLogEntry
}

func (m *memActivityLog) Create(_ context.Context, entry *domain.ActivityLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memActivityLog) ListRecent(_ context.Context, limit int) ([]*domain.ActivityLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) < limit {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

// fakeStates is an in-memory one-time state store.
type fakeStates struct {
	mu     sync.Mutex
	states map[string]bool
}

func newFakeStates() *fakeStates {
	return &fakeStates{states: make(map[string]bool)}
}

func (f *fakeStates) Put(_ context.Context, state string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[state] = true
	return nil
}

func (f *fakeStates) Consume(_ context.Context, state string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.states[state] {
		return false, nil
	}
	delete(f.states, state)
	return true, nil
}

// fakeClient implements ProfileClient with canned responses and call
// counters. Nil funcs fall back to zero-valued answers.
type fakeClient struct {
	mu sync.Mutex

	exchangeCalls int
	refreshCalls  int

	exchangeFn  func(code string) (*battlenet.TokenSet, error)
	refreshFn   func(refreshToken string) (*battlenet.TokenSet, error)
	userInfo    *battlenet.UserInfo
	userInfoErr error
	summaries   []battlenet.CharacterSummary
	listErr     error
	profiles    map[string]*battlenet.CharacterProfile
	profileErr  map[string]error
	media       map[string]*battlenet.CharacterMedia
	equipment   map[string]*battlenet.CharacterEquipment
	mythic      *battlenet.MythicKeystoneProfile
	mythicErr   error
	raid        *battlenet.RaidProgress
	raidErr     error
	pvp         *battlenet.PvPSummary
	pvpErr      error
}

func (f *fakeClient) AuthCodeURL(state string) string {
	return "https://oauth.battle.net/authorize?state=" + state
}

func (f *fakeClient) Exchange(_ context.Context, code string) (*battlenet.TokenSet, error) {
	f.mu.Lock()
	f.exchangeCalls++
	f.mu.Unlock()
	if f.exchangeFn != nil {
		return f.exchangeFn(code)
	}
	return &battlenet.TokenSet{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeClient) Refresh(_ context.Context, refreshToken string) (*battlenet.TokenSet, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.mu.Unlock()
	if f.refreshFn != nil {
		return f.refreshFn(refreshToken)
	}
	return &battlenet.TokenSet{
		AccessToken:  "refreshed-access",
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeClient) UserInfo(_ context.Context, _ string) (*battlenet.UserInfo, error) {
	return f.userInfo, f.userInfoErr
}

func (f *fakeClient) ListCharacters(_ context.Context, _ string) ([]battlenet.CharacterSummary, error) {
	return f.summaries, f.listErr
}

func (f *fakeClient) CharacterProfile(_ context.Context, _, _, name string) (*battlenet.CharacterProfile, error) {
	if err, ok := f.profileErr[name]; ok {
		return nil, err
	}
	return f.profiles[name], nil
}

func (f *fakeClient) CharacterMedia(_ context.Context, _, _, name string) (*battlenet.CharacterMedia, error) {
	return f.media[name], nil
}

func (f *fakeClient) CharacterEquipment(_ context.Context, _, _, name string) (*battlenet.CharacterEquipment, error) {
	return f.equipment[name], nil
}

func (f *fakeClient) MythicKeystoneProfile(_ context.Context, _, _, _ string) (*battlenet.MythicKeystoneProfile, error) {
	return f.mythic, f.mythicErr
}

func (f *fakeClient) RaidProgress(_ context.Context, _, _, _ string) (*battlenet.RaidProgress, error) {
	return f.raid, f.raidErr
}

func (f *fakeClient) PvPSummary(_ context.Context, _, _, _ string) (*battlenet.PvPSummary, error) {
	return f.pvp, f.pvpErr
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
