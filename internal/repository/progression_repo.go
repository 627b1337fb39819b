package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-progression/internal/gamification"
	"github.com/noah-isme/gema-progression/internal/models"
)

// ProgressionRepository owns the points ledger and the progression snapshot.
type ProgressionRepository interface {
	GetByStudent(ctx context.Context, studentID uint) (models.StudentProgression, error)
	// LockOrCreate returns the student's snapshot locked for update, creating
	// a zero-point white-belt row when none exists.
	LockOrCreate(ctx context.Context, studentID uint) (models.StudentProgression, error)
	// Save writes the mutable snapshot columns when the stored version still
	// matches progression.Version, then bumps the version.
	Save(ctx context.Context, progression *models.StudentProgression) error
	// Debit subtracts amount when the stored version matches and the balance
	// covers it. Belt columns are rewritten from progression.
	Debit(ctx context.Context, progression *models.StudentProgression, amount int64) error
	AppendHistory(ctx context.Context, entry *models.PointsHistoryEntry) error
	ListHistory(ctx context.Context, studentID uint, limit int) ([]models.PointsHistoryEntry, error)
	SumHistory(ctx context.Context, studentID uint) (int64, error)
	RecordBeltChange(ctx context.Context, entry *models.BeltHistory) error
	ListBeltHistory(ctx context.Context, studentID uint) ([]models.BeltHistory, error)
}

type progressionRepository struct {
	db *gorm.DB
}

// NewProgressionRepository constructs a progression repository.
func NewProgressionRepository(db *gorm.DB) ProgressionRepository {
	return &progressionRepository{db: db}
}

func (r *progressionRepository) GetByStudent(ctx context.Context, studentID uint) (models.StudentProgression, error) {
	var progression models.StudentProgression
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&progression).Error; err != nil {
		return models.StudentProgression{}, err
	}
	return progression, nil
}

func (r *progressionRepository) LockOrCreate(ctx context.Context, studentID uint) (models.StudentProgression, error) {
	progression, found, err := r.lock(ctx, studentID)
	if err != nil || found {
		return progression, err
	}

	seed := models.StudentProgression{
		StudentID:   studentID,
		TotalPoints: 0,
		CurrentBelt: string(gamification.BeltWhite),
		BeltLevel:   gamification.BeltWhite.Level(),
	}
	// A concurrent creator wins the unique index; either way the row exists afterwards.
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return models.StudentProgression{}, err
	}

	progression, found, err = r.lock(ctx, studentID)
	if err != nil {
		return models.StudentProgression{}, err
	}
	if !found {
		return models.StudentProgression{}, gorm.ErrRecordNotFound
	}
	return progression, nil
}

// lock reads the row with Find so a missing snapshot is not reported as an
// error by the gorm logger.
func (r *progressionRepository) lock(ctx context.Context, studentID uint) (models.StudentProgression, bool, error) {
	var progression models.StudentProgression
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ?", studentID).
		Limit(1).
		Find(&progression)
	if result.Error != nil {
		return models.StudentProgression{}, false, result.Error
	}
	return progression, result.RowsAffected > 0, nil
}

func (r *progressionRepository) Save(ctx context.Context, progression *models.StudentProgression) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.StudentProgression{}).
		Where("id = ? AND version = ?", progression.ID, progression.Version).
		Updates(map[string]interface{}{
			"total_points":       progression.TotalPoints,
			"current_belt":       progression.CurrentBelt,
			"belt_level":         progression.BeltLevel,
			"streak_days":        progression.StreakDays,
			"last_activity_date": progression.LastActivityDate,
			"version":            progression.Version + 1,
			"updated_at":         now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleWrite
	}

	progression.Version++
	progression.UpdatedAt = now
	return nil
}

func (r *progressionRepository) Debit(ctx context.Context, progression *models.StudentProgression, amount int64) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.StudentProgression{}).
		Where("id = ? AND version = ? AND total_points >= ?", progression.ID, progression.Version, amount).
		Updates(map[string]interface{}{
			"total_points": gorm.Expr("total_points - ?", amount),
			"current_belt": progression.CurrentBelt,
			"belt_level":   progression.BeltLevel,
			"version":      progression.Version + 1,
			"updated_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleWrite
	}

	progression.Version++
	progression.UpdatedAt = now
	return nil
}

func (r *progressionRepository) AppendHistory(ctx context.Context, entry *models.PointsHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *progressionRepository) ListHistory(ctx context.Context, studentID uint, limit int) ([]models.PointsHistoryEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []models.PointsHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *progressionRepository) SumHistory(ctx context.Context, studentID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.PointsHistoryEntry{}).
		Where("student_id = ?", studentID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *progressionRepository) RecordBeltChange(ctx context.Context, entry *models.BeltHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *progressionRepository) ListBeltHistory(ctx context.Context, studentID uint) ([]models.BeltHistory, error) {
	var entries []models.BeltHistory
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
