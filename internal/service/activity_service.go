package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sturmfeder/guild-portal/internal/battlenet"
	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/internal/repository"
	"go.uber.org/zap"
)

// activityService implements ActivityService interface
type activityService struct {
	accounts   repository.AccountRepository
	characters repository.CharacterRepository
	activities repository.ActivityRepository
	client     ProfileClient
	tokens     *TokenLifecycle
	logger     *zap.Logger
	now        func() time.Time
}

// NewActivityService creates a new weekly activity service
func NewActivityService(
	accounts repository.AccountRepository,
	characters repository.CharacterRepository,
	activities repository.ActivityRepository,
	client ProfileClient,
	tokens *TokenLifecycle,
	logger *zap.Logger,
) ActivityService {
	return &activityService{
		accounts:   accounts,
		characters: characters,
		activities: activities,
		client:     client,
		tokens:     tokens,
		logger:     logger,
		now:        time.Now,
	}
}

// Refresh recomputes the current week's snapshot for one owned
// character. The three upstream sources are fetched concurrently;
// each may independently be absent.
func (s *activityService) Refresh(ctx context.Context, accountID, characterID string) (*domain.WeeklyActivity, error) {
	character, err := s.characters.GetOwned(ctx, accountID, characterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("character %s: %w", characterID, domain.ErrNotFound)
		}
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
		}
		return nil, err
	}

	accessToken, err := s.tokens.EnsureFreshToken(ctx, account)
	if err != nil {
		return nil, err
	}

	var (
		wg        sync.WaitGroup
		mythic    *battlenet.MythicKeystoneProfile
		raid      *battlenet.RaidProgress
		pvp       *battlenet.PvPSummary
		mythicErr error
		raidErr   error
		pvpErr    error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		mythic, mythicErr = s.client.MythicKeystoneProfile(ctx, accessToken, character.RealmSlug, character.Name)
	}()
	go func() {
		defer wg.Done()
		raid, raidErr = s.client.RaidProgress(ctx, accessToken, character.RealmSlug, character.Name)
	}()
	go func() {
		defer wg.Done()
		pvp, pvpErr = s.client.PvPSummary(ctx, accessToken, character.RealmSlug, character.Name)
	}()
	wg.Wait()

	if err := errors.Join(mythicErr, raidErr, pvpErr); err != nil {
		return nil, fmt.Errorf("failed to fetch weekly activity sources: %w", err)
	}

	week := CurrentWeek(s.now())
	activity := deriveWeeklyActivity(character.ID, week, mythic, raid, pvp)

	if err := s.activities.Upsert(ctx, activity); err != nil {
		return nil, err
	}

	s.logger.Info("weekly activity refreshed",
		zap.String("character_id", character.ID),
		zap.Int("mythic_plus_runs", activity.MythicPlusRuns),
		zap.Int("raid_bosses_killed", activity.RaidBossesKilled),
	)

	return activity, nil
}

// Get returns the current week's snapshot, or a zero-valued projection
// when none exists yet. A read never creates a row.
func (s *activityService) Get(ctx context.Context, accountID, characterID string) (*domain.WeeklyActivity, error) {
	if _, err := s.characters.GetOwned(ctx, accountID, characterID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("character %s: %w", characterID, domain.ErrNotFound)
		}
		return nil, err
	}

	week := CurrentWeek(s.now())

	activity, err := s.activities.GetByWeek(ctx, characterID, week.Start)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.WeeklyActivity{
				CharacterID: characterID,
				WeekStart:   week.Start,
				WeekEnd:     week.End,
			}, nil
		}
		return nil, err
	}

	return activity, nil
}

// WeeklyOverview returns the current week's activities of all main
// characters across the guild.
func (s *activityService) WeeklyOverview(ctx context.Context) ([]*domain.OverviewEntry, error) {
	week := CurrentWeek(s.now())
	return s.activities.ListWeekOverview(ctx, week.Start)
}

// deriveWeeklyActivity rolls the three upstream payloads into one
// snapshot row. Every accessor defaults absent data to zero values.
func deriveWeeklyActivity(characterID string, week WeekWindow, mythic *battlenet.MythicKeystoneProfile, raid *battlenet.RaidProgress, pvp *battlenet.PvPSummary) *domain.WeeklyActivity {
	runs, highestKey := deriveMythicPlus(mythic)
	bossesKilled, difficulty := deriveRaidKills(raid)

	activity := &domain.WeeklyActivity{
		CharacterID:        characterID,
		WeekStart:          week.Start,
		WeekEnd:            week.End,
		MythicPlusRuns:     runs,
		HighestKeyLevel:    highestKey,
		TotalKeysCompleted: runs,
		RaidBossesKilled:   bossesKilled,
		RaidDifficulty:     difficulty,

		VaultMythicPlusTier: mythicPlusVaultTier(runs),
		VaultRaidTier:       raidVaultTier(bossesKilled),
		// The PvP summary only exposes season-to-date totals; without
		// a prior snapshot to diff against there is no weekly figure,
		// so the PvP tier stays at 0.
		VaultPvPTier: 0,

		RawData: buildRawSnapshot(mythic, raid, pvp),
	}

	return activity
}

// deriveMythicPlus counts the current period's best runs and finds the
// highest keystone level. An empty or absent run list yields 0/0.
func deriveMythicPlus(mythic *battlenet.MythicKeystoneProfile) (runs, highestKey int) {
	if mythic == nil || mythic.CurrentPeriod == nil {
		return 0, 0
	}

	runs = len(mythic.CurrentPeriod.BestRuns)
	for _, run := range mythic.CurrentPeriod.BestRuns {
		if run.KeystoneLevel > highestKey {
			highestKey = run.KeystoneLevel
		}
	}
	return runs, highestKey
}

// deriveRaidKills takes the last expansion's last instance as the
// current tier and returns the best completed count across its
// difficulties, together with the difficulty that produced it.
func deriveRaidKills(raid *battlenet.RaidProgress) (int, *string) {
	if raid == nil || len(raid.Expansions) == 0 {
		return 0, nil
	}

	expansion := raid.Expansions[len(raid.Expansions)-1]
	if len(expansion.Instances) == 0 {
		return 0, nil
	}

	instance := expansion.Instances[len(expansion.Instances)-1]

	var (
		bossesKilled int
		difficulty   *string
	)
	for _, mode := range instance.Modes {
		if mode.Progress == nil {
			continue
		}
		count := mode.Progress.CompletedCount
		if count > 0 && count > bossesKilled {
			bossesKilled = count
			name := mode.Difficulty.Name
			if name == "" {
				name = mode.Difficulty.Type
			}
			difficulty = &name
		}
	}

	return bossesKilled, difficulty
}

// buildRawSnapshot preserves the undecoded upstream payloads for
// debugging and audit.
func buildRawSnapshot(mythic *battlenet.MythicKeystoneProfile, raid *battlenet.RaidProgress, pvp *battlenet.PvPSummary) json.RawMessage {
	snapshot := map[string]json.RawMessage{
		"mythic": json.RawMessage("null"),
		"raid":   json.RawMessage("null"),
		"pvp":    json.RawMessage("null"),
	}
	if mythic != nil && len(mythic.Raw) > 0 {
		snapshot["mythic"] = mythic.Raw
	}
	if raid != nil && len(raid.Raw) > 0 {
		snapshot["raid"] = raid.Raw
	}
	if pvp != nil && len(pvp.Raw) > 0 {
		snapshot["pvp"] = pvp.Raw
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil
	}
	return raw
}
