package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-progression/internal/models"
)

// SpecializationRepository persists specialization choices and skill unlocks.
type SpecializationRepository interface {
	GetSpecialization(ctx context.Context, code string) (models.Specialization, error)
	ListSpecializations(ctx context.Context) ([]models.Specialization, error)
	GetStudentSpecialization(ctx context.Context, studentID uint) (models.StudentSpecialization, error)
	// CreateStudentSpecialization fails with gorm.ErrDuplicatedKey when the
	// student already chose one.
	CreateStudentSpecialization(ctx context.Context, choice *models.StudentSpecialization) error
	UpdateStudentLevel(ctx context.Context, studentID uint, fromLevel, toLevel int, title string) error

	GetSkill(ctx context.Context, id uint) (models.Skill, error)
	ListSkills(ctx context.Context, specializationCode string) ([]models.Skill, error)
	UnlockSkill(ctx context.Context, unlock *models.StudentSkill) error
	HasSkill(ctx context.Context, studentID, skillID uint) (bool, error)
	ListStudentSkills(ctx context.Context, studentID uint) ([]models.StudentSkill, error)
	CountStudentSkills(ctx context.Context, studentID uint) (int64, error)
	// BonusValues returns the bonus value of every unlocked skill of bonusType.
	BonusValues(ctx context.Context, studentID uint, bonusType string) ([]float64, error)
}

type specializationRepository struct {
	db *gorm.DB
}

// NewSpecializationRepository constructs a specialization repository.
func NewSpecializationRepository(db *gorm.DB) SpecializationRepository {
	return &specializationRepository{db: db}
}

func (r *specializationRepository) GetSpecialization(ctx context.Context, code string) (models.Specialization, error) {
	var specialization models.Specialization
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&specialization).Error; err != nil {
		return models.Specialization{}, err
	}
	return specialization, nil
}

func (r *specializationRepository) ListSpecializations(ctx context.Context) ([]models.Specialization, error) {
	var specializations []models.Specialization
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&specializations).Error; err != nil {
		return nil, err
	}
	return specializations, nil
}

func (r *specializationRepository) GetStudentSpecialization(ctx context.Context, studentID uint) (models.StudentSpecialization, error) {
	var choice models.StudentSpecialization
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&choice).Error; err != nil {
		return models.StudentSpecialization{}, err
	}
	return choice, nil
}

func (r *specializationRepository) CreateStudentSpecialization(ctx context.Context, choice *models.StudentSpecialization) error {
	return r.db.WithContext(ctx).Create(choice).Error
}

func (r *specializationRepository) UpdateStudentLevel(ctx context.Context, studentID uint, fromLevel, toLevel int, title string) error {
	result := r.db.WithContext(ctx).
		Model(&models.StudentSpecialization{}).
		Where("student_id = ? AND level = ?", studentID, fromLevel).
		Updates(map[string]interface{}{
			"level":           toLevel,
			"honorific_title": title,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

func (r *specializationRepository) GetSkill(ctx context.Context, id uint) (models.Skill, error) {
	var skill models.Skill
	if err := r.db.WithContext(ctx).First(&skill, id).Error; err != nil {
		return models.Skill{}, err
	}
	return skill, nil
}

func (r *specializationRepository) ListSkills(ctx context.Context, specializationCode string) ([]models.Skill, error) {
	query := r.db.WithContext(ctx)
	if specializationCode != "" {
		query = query.Where("specialization_code = ?", specializationCode)
	}

	var skills []models.Skill
	if err := query.Order("tier ASC, id ASC").Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

func (r *specializationRepository) UnlockSkill(ctx context.Context, unlock *models.StudentSkill) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(unlock).Error
}

func (r *specializationRepository) HasSkill(ctx context.Context, studentID, skillID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StudentSkill{}).
		Where("student_id = ? AND skill_id = ?", studentID, skillID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *specializationRepository) ListStudentSkills(ctx context.Context, studentID uint) ([]models.StudentSkill, error) {
	var unlocks []models.StudentSkill
	if err := r.db.WithContext(ctx).
		Preload("Skill").
		Where("student_id = ?", studentID).
		Order("unlocked_at ASC, id ASC").
		Find(&unlocks).Error; err != nil {
		return nil, err
	}
	return unlocks, nil
}

func (r *specializationRepository) CountStudentSkills(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StudentSkill{}).Where("student_id = ?", studentID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *specializationRepository) BonusValues(ctx context.Context, studentID uint, bonusType string) ([]float64, error) {
	var values []float64
	if err := r.db.WithContext(ctx).
		Table("student_skills").
		Joins("JOIN skills ON skills.id = student_skills.skill_id").
		Where("student_skills.student_id = ? AND skills.bonus_type = ?", studentID, bonusType).
		Order("skills.id ASC").
		Pluck("skills.bonus_value", &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}
