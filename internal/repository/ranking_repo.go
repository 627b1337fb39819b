package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progression/internal/models"
)

// RankingRow is one leaderboard line.
type RankingRow struct {
	StudentID   uint   `json:"student_id"`
	Name        string `json:"name"`
	TotalPoints int64  `json:"total_points"`
	CurrentBelt string `json:"current_belt"`
	BeltLevel   int    `json:"belt_level"`
	StreakDays  int    `json:"streak_days"`
}

// RankingAggregate summarises the points of a scope.
type RankingAggregate struct {
	TotalStudents int64
	AvgPoints     float64
	MaxPoints     int64
	MinPoints     int64
}

// RankingRepository runs read-only leaderboard queries. A scope of 0 covers
// every student; any other scope is a subject id resolved through enrollments.
type RankingRepository interface {
	List(ctx context.Context, scope uint, limit int) ([]RankingRow, error)
	Aggregate(ctx context.Context, scope uint) (RankingAggregate, error)
	// Position returns the 1-based rank of the student, or 0 when the student
	// has no progression row in scope.
	Position(ctx context.Context, studentID, scope uint) (int64, *RankingRow, error)
	InScope(ctx context.Context, studentID, scope uint) (bool, error)
	PointsBefore(ctx context.Context, studentID uint, before time.Time) (int64, error)
	EntriesSince(ctx context.Context, studentID uint, since time.Time) ([]models.PointsHistoryEntry, error)
}

type rankingRepository struct {
	db *gorm.DB
}

// NewRankingRepository constructs a ranking repository.
func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

func (r *rankingRepository) scoped(ctx context.Context, scope uint) *gorm.DB {
	query := r.db.WithContext(ctx).Table("student_progressions AS sp")
	if scope != 0 {
		query = query.
			Joins("JOIN subject_enrollments AS se ON se.student_id = sp.student_id").
			Where("se.subject_id = ?", scope)
	}
	return query
}

func (r *rankingRepository) List(ctx context.Context, scope uint, limit int) ([]RankingRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var rows []RankingRow
	if err := r.scoped(ctx, scope).
		Select("sp.student_id, COALESCE(s.name, '') AS name, sp.total_points, sp.current_belt, sp.belt_level, sp.streak_days").
		Joins("LEFT JOIN students AS s ON s.id = sp.student_id").
		Order("sp.total_points DESC, sp.student_id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *rankingRepository) Aggregate(ctx context.Context, scope uint) (RankingAggregate, error) {
	var aggregate struct {
		TotalStudents int64
		AvgPoints     float64
		MaxPoints     int64
		MinPoints     int64
	}
	if err := r.scoped(ctx, scope).
		Select("COUNT(*) AS total_students, COALESCE(AVG(sp.total_points), 0) AS avg_points, COALESCE(MAX(sp.total_points), 0) AS max_points, COALESCE(MIN(sp.total_points), 0) AS min_points").
		Scan(&aggregate).Error; err != nil {
		return RankingAggregate{}, err
	}
	return RankingAggregate(aggregate), nil
}

func (r *rankingRepository) Position(ctx context.Context, studentID, scope uint) (int64, *RankingRow, error) {
	var rows []RankingRow
	if err := r.scoped(ctx, scope).
		Select("sp.student_id, COALESCE(s.name, '') AS name, sp.total_points, sp.current_belt, sp.belt_level, sp.streak_days").
		Joins("LEFT JOIN students AS s ON s.id = sp.student_id").
		Where("sp.student_id = ?", studentID).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return 0, nil, err
	}
	if len(rows) == 0 {
		return 0, nil, nil
	}
	row := rows[0]

	var ahead int64
	if err := r.scoped(ctx, scope).
		Where("(sp.total_points > ? OR (sp.total_points = ? AND sp.student_id < ?))", row.TotalPoints, row.TotalPoints, row.StudentID).
		Count(&ahead).Error; err != nil {
		return 0, nil, err
	}
	return ahead + 1, &row, nil
}

func (r *rankingRepository) InScope(ctx context.Context, studentID, scope uint) (bool, error) {
	if scope == 0 {
		return true, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubjectEnrollment{}).
		Where("subject_id = ? AND student_id = ?", scope, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *rankingRepository) PointsBefore(ctx context.Context, studentID uint, before time.Time) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.PointsHistoryEntry{}).
		Where("student_id = ? AND created_at < ?", studentID, before).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *rankingRepository) EntriesSince(ctx context.Context, studentID uint, since time.Time) ([]models.PointsHistoryEntry, error) {
	var entries []models.PointsHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND created_at >= ?", studentID, since).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
