package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progression/internal/config"
	"github.com/noah-isme/gema-progression/internal/models"
	"github.com/noah-isme/gema-progression/internal/repository"
)

// CatalogSummary counts the rows written by a seed.
type CatalogSummary struct {
	Badges          int `json:"badges"`
	Specializations int `json:"specializations"`
	Skills          int `json:"skills"`
	ShopItems       int `json:"shop_items"`
}

// CatalogService loads reference data from the progression policy.
type CatalogService interface {
	Seed(ctx context.Context, policy config.Policy) (CatalogSummary, error)
}

type catalogService struct {
	store  repository.Store
	logger zerolog.Logger
}

// NewCatalogService constructs the catalog seeder.
func NewCatalogService(store repository.Store, logger zerolog.Logger) CatalogService {
	return &catalogService{
		store:  store,
		logger: logger.With().Str("component", "catalog_service").Logger(),
	}
}

// Seed upserts every catalog entry of policy by code. Re-running it updates
// names and prices but never refills stock.
func (s *catalogService) Seed(ctx context.Context, policy config.Policy) (CatalogSummary, error) {
	var summary CatalogSummary
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		catalog := tx.Catalog()

		for _, entry := range policy.Badges {
			badge := models.Badge{
				Code:        normalizeCode(entry.Code),
				Name:        entry.Name,
				Description: entry.Description,
				Criteria:    entry.Criteria,
				Icon:        entry.Icon,
			}
			if err := catalog.UpsertBadge(ctx, &badge); err != nil {
				return fmt.Errorf("seed badge %s: %w", badge.Code, err)
			}
			summary.Badges++
		}

		for _, entry := range policy.Specializations {
			specialization := models.Specialization{
				Code:        normalizeCode(entry.Code),
				Name:        entry.Name,
				Description: entry.Description,
			}
			if err := catalog.UpsertSpecialization(ctx, &specialization); err != nil {
				return fmt.Errorf("seed specialization %s: %w", specialization.Code, err)
			}
			summary.Specializations++

			count, err := s.seedSkills(ctx, catalog, specialization.Code, entry.Skills)
			if err != nil {
				return err
			}
			summary.Skills += count
		}

		for _, entry := range policy.ShopItems {
			active := true
			if entry.Active != nil {
				active = *entry.Active
			}
			item := models.ShopItem{
				Code:         normalizeCode(entry.Code),
				Name:         entry.Name,
				Description:  entry.Description,
				Category:     entry.Category,
				Price:        entry.Price,
				RequiredBelt: entry.RequiredBelt,
				Rarity:       entry.Rarity,
				Stock:        entry.Stock,
				IsActive:     active,
			}
			if item.RequiredBelt == "" {
				item.RequiredBelt = "white"
			}
			if err := catalog.UpsertShopItem(ctx, &item); err != nil {
				return fmt.Errorf("seed shop item %s: %w", item.Code, err)
			}
			summary.ShopItems++
		}
		return nil
	})
	if err != nil {
		return CatalogSummary{}, err
	}

	s.logger.Info().
		Int("badges", summary.Badges).
		Int("specializations", summary.Specializations).
		Int("skills", summary.Skills).
		Int("shop_items", summary.ShopItems).
		Msg("catalog seeded")
	return summary, nil
}

// seedSkills writes the skills first and links prerequisites in a second pass,
// so a skill may require one listed after it.
func (s *catalogService) seedSkills(ctx context.Context, catalog repository.CatalogRepository, specialization string, entries []config.SkillPolicy) (int, error) {
	skills := make([]models.Skill, 0, len(entries))
	codes := make([]string, 0, len(entries))
	for _, entry := range entries {
		skill := models.Skill{
			SpecializationCode: specialization,
			Code:               normalizeCode(entry.Code),
			Name:               entry.Name,
			Description:        entry.Description,
			Tier:               entry.Tier,
			BonusType:          entry.BonusType,
			BonusValue:         entry.BonusValue,
		}
		if err := catalog.UpsertSkill(ctx, &skill); err != nil {
			return 0, fmt.Errorf("seed skill %s: %w", skill.Code, err)
		}
		skills = append(skills, skill)
		codes = append(codes, skill.Code)
	}

	ids, err := catalog.SkillIDsByCode(ctx, codes)
	if err != nil {
		return 0, fmt.Errorf("resolve skill ids: %w", err)
	}
	for i, entry := range entries {
		if entry.Requires == "" {
			continue
		}
		prerequisite, ok := ids[normalizeCode(entry.Requires)]
		if !ok {
			return 0, fmt.Errorf("skill %s requires unknown skill %s", skills[i].Code, entry.Requires)
		}
		linked := models.Skill{
			SpecializationCode:  skills[i].SpecializationCode,
			Code:                skills[i].Code,
			Name:                skills[i].Name,
			Description:         skills[i].Description,
			Tier:                skills[i].Tier,
			BonusType:           skills[i].BonusType,
			BonusValue:          skills[i].BonusValue,
			PrerequisiteSkillID: &prerequisite,
		}
		if err := catalog.UpsertSkill(ctx, &linked); err != nil {
			return 0, fmt.Errorf("link skill %s: %w", linked.Code, err)
		}
	}
	return len(skills), nil
}
