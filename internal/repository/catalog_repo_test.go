package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progression/internal/models"
)

func TestBadgeRepositoryAwardIsUniquePerStudent(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewBadgeRepository(db)
	ctx := context.Background()

	require.NoError(t, catalog.UpsertBadge(ctx, &models.Badge{Code: "first_steps", Name: "First Steps"}))

	require.NoError(t, repo.Award(ctx, &models.StudentBadge{StudentID: 1, BadgeCode: "first_steps", AwardedAt: time.Now()}))
	err := repo.Award(ctx, &models.StudentBadge{StudentID: 1, BadgeCode: "first_steps", AwardedAt: time.Now()})
	require.True(t, IsDuplicate(err))

	awards, err := repo.ListByStudent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, awards, 1)
	require.Equal(t, "First Steps", awards[0].Badge.Name)
}

func TestCatalogRepositoryUpsertKeepsIDAndStock(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogRepository(db)
	ctx := context.Background()

	item := models.ShopItem{Code: "golden-keyboard", Name: "Golden Keyboard", Category: models.SlotSpecial, Price: 1500, RequiredBelt: "black", Rarity: "legendary", Stock: intPtr(10), IsActive: true}
	require.NoError(t, catalog.UpsertShopItem(ctx, &item))
	firstID := item.ID

	require.NoError(t, db.Model(&models.ShopItem{}).Where("id = ?", firstID).Update("stock", 3).Error)

	renamed := models.ShopItem{Code: "golden-keyboard", Name: "Gilded Keyboard", Category: models.SlotSpecial, Price: 1400, RequiredBelt: "black", Rarity: "legendary", Stock: intPtr(10), IsActive: true}
	require.NoError(t, catalog.UpsertShopItem(ctx, &renamed))
	require.Equal(t, firstID, renamed.ID)
	require.Equal(t, "Gilded Keyboard", renamed.Name)
	require.Equal(t, int64(1400), renamed.Price)
	require.NotNil(t, renamed.Stock)
	require.Equal(t, 3, *renamed.Stock)
}

func TestSpecializationRepositoryBonusValues(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewSpecializationRepository(db)
	ctx := context.Background()

	require.NoError(t, catalog.UpsertSpecialization(ctx, &models.Specialization{Code: "frontend", Name: "Frontend"}))
	first := models.Skill{SpecializationCode: "frontend", Code: "semantic-html", Name: "Semantic HTML", Tier: 1, BonusType: models.BonusPointsMultiplier, BonusValue: 0.1}
	second := models.Skill{SpecializationCode: "frontend", Code: "css-layout", Name: "CSS Layout", Tier: 2, BonusType: models.BonusPointsMultiplier, BonusValue: 0.15}
	other := models.Skill{SpecializationCode: "frontend", Code: "a11y", Name: "Accessibility", Tier: 2, BonusType: models.BonusStreakMultiplier, BonusValue: 0.2}
	for _, skill := range []*models.Skill{&first, &second, &other} {
		require.NoError(t, catalog.UpsertSkill(ctx, skill))
	}

	for _, skill := range []models.Skill{first, second, other} {
		require.NoError(t, repo.UnlockSkill(ctx, &models.StudentSkill{StudentID: 4, SkillID: skill.ID, UnlockedAt: time.Now()}))
	}
	err := repo.UnlockSkill(ctx, &models.StudentSkill{StudentID: 4, SkillID: first.ID, UnlockedAt: time.Now()})
	require.True(t, IsDuplicate(err))

	values, err := repo.BonusValues(ctx, 4, models.BonusPointsMultiplier)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.1, 0.15}, values, 1e-9)

	count, err := repo.CountStudentSkills(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	ids, err := catalog.SkillIDsByCode(ctx, []string{"semantic-html", "missing"})
	require.NoError(t, err)
	require.Equal(t, map[string]uint{"semantic-html": first.ID}, ids)
}

func TestShopRepositoryStockAndEquipment(t *testing.T) {
	db := newTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewShopRepository(db)
	ctx := context.Background()

	limited := models.ShopItem{Code: "rare-hat", Name: "Rare Hat", Category: models.SlotHat, Price: 10, RequiredBelt: "white", Rarity: "rare", Stock: intPtr(1), IsActive: true}
	plain := models.ShopItem{Code: "cap", Name: "Cap", Category: models.SlotHat, Price: 5, RequiredBelt: "white", Rarity: "common", IsActive: true}
	require.NoError(t, catalog.UpsertShopItem(ctx, &limited))
	require.NoError(t, catalog.UpsertShopItem(ctx, &plain))

	ok, err := repo.DecrementStock(ctx, limited)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = repo.DecrementStock(ctx, limited)
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = repo.DecrementStock(ctx, plain)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.UpsertEquipment(ctx, &models.StudentEquipment{StudentID: 1, Slot: models.SlotHat, ItemID: limited.ID}))
	require.NoError(t, repo.UpsertEquipment(ctx, &models.StudentEquipment{StudentID: 1, Slot: models.SlotHat, ItemID: plain.ID}))

	equipped, err := repo.ListEquipment(ctx, 1)
	require.NoError(t, err)
	require.Len(t, equipped, 1)
	require.Equal(t, plain.ID, equipped[0].ItemID)
	require.Equal(t, "Cap", equipped[0].Item.Name)

	removed, err := repo.DeleteEquipment(ctx, 1, models.SlotHat)
	require.NoError(t, err)
	require.True(t, removed)
	removed, err = repo.DeleteEquipment(ctx, 1, models.SlotHat)
	require.NoError(t, err)
	require.False(t, removed)

	items, err := repo.ListItems(ctx, ShopItemFilter{Category: models.SlotHat, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "cap", items[0].Code, "expected cheapest item first")
}
