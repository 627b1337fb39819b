package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-progression/internal/models"
)

// StudentRepository provides access to student records and subject enrollments.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	// Enroll adds the student to a subject leaderboard. Enrolling twice is a no-op.
	Enroll(ctx context.Context, subjectID, studentID uint) error
	IsEnrolled(ctx context.Context, subjectID, studentID uint) (bool, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Enroll(ctx context.Context, subjectID, studentID uint) error {
	enrollment := models.SubjectEnrollment{SubjectID: subjectID, StudentID: studentID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment).Error
}

func (r *studentRepository) IsEnrolled(ctx context.Context, subjectID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubjectEnrollment{}).
		Where("subject_id = ? AND student_id = ?", subjectID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
