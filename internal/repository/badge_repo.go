package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-progression/internal/models"
)

// BadgeRepository persists the badge catalog and awarded badges.
type BadgeRepository interface {
	GetByCode(ctx context.Context, code string) (models.Badge, error)
	List(ctx context.Context) ([]models.Badge, error)
	// Award inserts the student badge. A second award of the same pair fails
	// with gorm.ErrDuplicatedKey.
	Award(ctx context.Context, award *models.StudentBadge) error
	ListByStudent(ctx context.Context, studentID uint) ([]models.StudentBadge, error)
	CountByStudent(ctx context.Context, studentID uint) (int64, error)
}

type badgeRepository struct {
	db *gorm.DB
}

// NewBadgeRepository constructs a badge repository.
func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) GetByCode(ctx context.Context, code string) (models.Badge, error) {
	var badge models.Badge
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&badge).Error; err != nil {
		return models.Badge{}, err
	}
	return badge, nil
}

func (r *badgeRepository) List(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *badgeRepository) Award(ctx context.Context, award *models.StudentBadge) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(award).Error
}

func (r *badgeRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.StudentBadge, error) {
	var awards []models.StudentBadge
	if err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("student_id = ?", studentID).
		Order("awarded_at ASC, id ASC").
		Find(&awards).Error; err != nil {
		return nil, err
	}
	return awards, nil
}

func (r *badgeRepository) CountByStudent(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StudentBadge{}).Where("student_id = ?", studentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
