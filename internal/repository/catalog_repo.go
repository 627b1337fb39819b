package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-progression/internal/models"
)

// CatalogRepository upserts reference data keyed by code.
type CatalogRepository interface {
	UpsertBadge(ctx context.Context, badge *models.Badge) error
	UpsertSpecialization(ctx context.Context, specialization *models.Specialization) error
	UpsertSkill(ctx context.Context, skill *models.Skill) error
	UpsertShopItem(ctx context.Context, item *models.ShopItem) error
	SkillIDsByCode(ctx context.Context, codes []string) (map[string]uint, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository constructs a catalog repository.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) upsert(ctx context.Context, value interface{}, columns ...string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
		}).
		Create(value).Error
}

func (r *catalogRepository) UpsertBadge(ctx context.Context, badge *models.Badge) error {
	if err := r.upsert(ctx, badge, "name", "description", "criteria", "icon"); err != nil {
		return err
	}

	var stored models.Badge
	if err := r.byCode(ctx, badge.Code).First(&stored).Error; err != nil {
		return err
	}
	*badge = stored
	return nil
}

func (r *catalogRepository) UpsertSpecialization(ctx context.Context, specialization *models.Specialization) error {
	if err := r.upsert(ctx, specialization, "name", "description"); err != nil {
		return err
	}

	var stored models.Specialization
	if err := r.byCode(ctx, specialization.Code).First(&stored).Error; err != nil {
		return err
	}
	*specialization = stored
	return nil
}

func (r *catalogRepository) UpsertSkill(ctx context.Context, skill *models.Skill) error {
	if err := r.upsert(ctx, skill, "specialization_code", "name", "description", "tier", "bonus_type", "bonus_value", "prerequisite_skill_id"); err != nil {
		return err
	}

	var stored models.Skill
	if err := r.byCode(ctx, skill.Code).First(&stored).Error; err != nil {
		return err
	}
	*skill = stored
	return nil
}

// UpsertShopItem leaves stock untouched for existing rows so a reseed never
// refills a limited item.
func (r *catalogRepository) UpsertShopItem(ctx context.Context, item *models.ShopItem) error {
	if err := r.upsert(ctx, item, "name", "description", "category", "price", "required_belt", "rarity", "is_active"); err != nil {
		return err
	}

	var stored models.ShopItem
	if err := r.byCode(ctx, item.Code).First(&stored).Error; err != nil {
		return err
	}
	*item = stored
	return nil
}

// byCode scopes a query to one catalog code. Upserts re-read the row because
// conflict updates do not report ids on every driver.
func (r *catalogRepository) byCode(ctx context.Context, code string) *gorm.DB {
	return r.db.WithContext(ctx).Where("code = ?", code)
}

func (r *catalogRepository) SkillIDsByCode(ctx context.Context, codes []string) (map[string]uint, error) {
	ids := make(map[string]uint, len(codes))
	if len(codes) == 0 {
		return ids, nil
	}

	var skills []models.Skill
	if err := r.db.WithContext(ctx).Select("id", "code").Where("code IN ?", codes).Find(&skills).Error; err != nil {
		return nil, err
	}
	for _, skill := range skills {
		ids[skill.Code] = skill.ID
	}
	return ids, nil
}
