package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sturmfeder/guild-portal/internal/battlenet"
	"github.com/sturmfeder/guild-portal/internal/domain"
	"github.com/sturmfeder/guild-portal/internal/repository"
	"go.uber.org/zap"
)

// Media asset keys used for the roster display.
const (
	mediaKeyAvatar = "avatar"
	mediaKeyInset  = "inset"
)

// characterService implements CharacterService interface
type characterService struct {
	accounts   repository.AccountRepository
	characters repository.CharacterRepository
	equipment  repository.EquipmentRepository
	client     ProfileClient
	tokens     *TokenLifecycle
	logger     *zap.Logger
}

// NewCharacterService creates a new character sync service
func NewCharacterService(
	accounts repository.AccountRepository,
	characters repository.CharacterRepository,
	equipment repository.EquipmentRepository,
	client ProfileClient,
	tokens *TokenLifecycle,
	logger *zap.Logger,
) CharacterService {
	return &characterService{
		accounts:   accounts,
		characters: characters,
		equipment:  equipment,
		client:     client,
		tokens:     tokens,
		logger:     logger,
	}
}

// List returns the account's roster, main character first
func (s *characterService) List(ctx context.Context, accountID string) ([]*domain.Character, error) {
	return s.characters.ListByAccount(ctx, accountID)
}

// SyncAll pulls the full character list from Battle.net and upserts
// every entry. Enrichment is best-effort per character: one failing
// character is logged and skipped, never aborting the batch.
func (s *characterService) SyncAll(ctx context.Context, accountID string) ([]*domain.Character, error) {
	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.EnsureFreshToken(ctx, account)
	if err != nil {
		return nil, err
	}

	summaries, err := s.client.ListCharacters(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	var synced []*domain.Character
	for _, summary := range summaries {
		profile, err := s.client.CharacterProfile(ctx, accessToken, summary.Realm.Slug, summary.Name)
		if err != nil {
			s.logger.Warn("skipping character, profile fetch failed",
				zap.String("name", summary.Name),
				zap.String("realm", summary.Realm.Slug),
				zap.Error(err),
			)
			continue
		}

		media, err := s.client.CharacterMedia(ctx, accessToken, summary.Realm.Slug, summary.Name)
		if err != nil {
			s.logger.Warn("character media fetch failed",
				zap.String("name", summary.Name),
				zap.Error(err),
			)
			media = nil
		}

		character := buildCharacter(account.ID, summary, profile, media)
		if err := s.characters.Upsert(ctx, character); err != nil {
			s.logger.Warn("failed to upsert character",
				zap.String("name", summary.Name),
				zap.Error(err),
			)
			continue
		}

		synced = append(synced, character)
	}

	s.logger.Info("character sync finished",
		zap.String("account_id", accountID),
		zap.Int("upstream", len(summaries)),
		zap.Int("synced", len(synced)),
	)

	return synced, nil
}

// RefreshOne re-fetches profile, media and equipment for a single
// owned character. Equipment rows are replaced wholesale.
func (s *characterService) RefreshOne(ctx context.Context, accountID, characterID string) (*domain.Character, error) {
	character, err := s.loadOwned(ctx, accountID, characterID)
	if err != nil {
		return nil, err
	}

	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.EnsureFreshToken(ctx, account)
	if err != nil {
		return nil, err
	}

	profile, err := s.client.CharacterProfile(ctx, accessToken, character.RealmSlug, character.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch character profile: %w", err)
	}

	if profile != nil {
		applyProfile(character, profile)
	}

	media, err := s.client.CharacterMedia(ctx, accessToken, character.RealmSlug, character.Name)
	if err == nil && media != nil {
		applyMedia(character, media)
	}

	if err := s.characters.UpdateProfile(ctx, character); err != nil {
		return nil, err
	}

	equipment, err := s.client.CharacterEquipment(ctx, accessToken, character.RealmSlug, character.Name)
	if err == nil && equipment != nil {
		items := buildEquipment(character.ID, equipment)
		if err := s.equipment.ReplaceForCharacter(ctx, character.ID, items); err != nil {
			return nil, fmt.Errorf("failed to replace equipment: %w", err)
		}
	}

	return character, nil
}

// SetMain designates one owned character as main. The clear and set
// happen in one repository transaction, so at most one character per
// account is ever observed as main.
func (s *characterService) SetMain(ctx context.Context, accountID, characterID string) (*domain.Character, error) {
	character, err := s.loadOwned(ctx, accountID, characterID)
	if err != nil {
		return nil, err
	}

	if err := s.characters.ClearAndSetMain(ctx, accountID, characterID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("character %s: %w", characterID, domain.ErrNotFound)
		}
		return nil, err
	}

	character.IsMain = true
	return character, nil
}

// Equipment returns the stored equipment rows of an owned character
func (s *characterService) Equipment(ctx context.Context, accountID, characterID string) ([]*domain.EquipmentItem, error) {
	if _, err := s.loadOwned(ctx, accountID, characterID); err != nil {
		return nil, err
	}
	return s.equipment.ListByCharacter(ctx, characterID)
}

func (s *characterService) loadAccount(ctx context.Context, accountID string) (*domain.BattleNetAccount, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
		}
		return nil, err
	}
	return account, nil
}

func (s *characterService) loadOwned(ctx context.Context, accountID, characterID string) (*domain.Character, error) {
	character, err := s.characters.GetOwned(ctx, accountID, characterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("character %s: %w", characterID, domain.ErrNotFound)
		}
		return nil, err
	}
	return character, nil
}

// buildCharacter maps a summary plus optional enrichment payloads onto
// a roster row. Absent enrichment leaves the nullable fields nil.
func buildCharacter(accountID string, summary battlenet.CharacterSummary, profile *battlenet.CharacterProfile, media *battlenet.CharacterMedia) *domain.Character {
	character := &domain.Character{
		AccountID:          accountID,
		CharacterID:        summary.ID,
		Name:               summary.Name,
		Realm:              summary.Realm.Name,
		RealmSlug:          summary.Realm.Slug,
		Faction:            summary.Faction.Type,
		Race:               summary.PlayableRace.Name,
		Class:              summary.PlayableClass.Name,
		Gender:             summary.Gender.Type,
		Level:              summary.Level,
		LastLoginTimestamp: summary.LastLoginTimestamp,
	}

	if profile != nil {
		applyProfile(character, profile)
	}
	if media != nil {
		applyMedia(character, media)
	}

	return character
}

func applyProfile(character *domain.Character, profile *battlenet.CharacterProfile) {
	if profile.ActiveSpec != nil {
		spec := profile.ActiveSpec.Name
		character.ActiveSpec = &spec
	} else {
		character.ActiveSpec = nil
	}

	character.Level = profile.Level
	avg := profile.AverageItemLevel
	equipped := profile.EquippedItemLevel
	points := profile.AchievementPoints
	character.AverageItemLevel = &avg
	character.EquippedItemLevel = &equipped
	character.AchievementPoints = &points
}

func applyMedia(character *domain.Character, media *battlenet.CharacterMedia) {
	if url := media.AssetURL(mediaKeyAvatar); url != "" {
		character.AvatarURL = &url
	}
	if url := media.AssetURL(mediaKeyInset); url != "" {
		character.ThumbnailURL = &url
	}
}

func buildEquipment(characterID string, equipment *battlenet.CharacterEquipment) []*domain.EquipmentItem {
	items := make([]*domain.EquipmentItem, 0, len(equipment.EquippedItems))
	for _, equipped := range equipment.EquippedItems {
		item := &domain.EquipmentItem{
			CharacterID:  characterID,
			Slot:         equipped.Slot.Type,
			ItemID:       equipped.Item.ID,
			ItemName:     equipped.Name,
			ItemLevel:    equipped.Level.Value,
			Enchantments: equipped.Enchantments,
			Gems:         equipped.Sockets,
		}
		if equipped.Quality.Type != "" {
			quality := equipped.Quality.Type
			item.Quality = &quality
		}
		items = append(items, item)
	}
	return items
}
