package dto

import (
	"time"

	"github.com/noah-isme/gema-progression/internal/models"
)

// AwardPointsRequest credits points to a student's ledger.
type AwardPointsRequest struct {
	StudentID    uint   `json:"student_id" validate:"required"`
	Points       int64  `json:"points" validate:"gt=0"`
	Reason       string `json:"reason" validate:"max=255"`
	ActivityType string `json:"activity_type" validate:"required,max=64"`
}

// AwardResult reports the ledger state after a credit.
type AwardResult struct {
	StudentID    uint   `json:"student_id"`
	TotalPoints  int64  `json:"total_points"`
	BeltUpgraded bool   `json:"belt_upgraded"`
	OldBelt      string `json:"old_belt"`
	NewBelt      string `json:"new_belt"`
	BeltLevel    int    `json:"belt_level"`
}

// StreakResult reports the streak after an activity touch.
type StreakResult struct {
	StudentID  uint `json:"student_id"`
	StreakDays int  `json:"streak_days"`
	Changed    bool `json:"changed"`
	Broken     bool `json:"broken"`
}

// ProgressionResponse is the progression snapshot of a student.
type ProgressionResponse struct {
	StudentID        uint       `json:"student_id"`
	TotalPoints      int64      `json:"total_points"`
	CurrentBelt      string     `json:"current_belt"`
	BeltLevel        int        `json:"belt_level"`
	StreakDays       int        `json:"streak_days"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	NextBelt         string     `json:"next_belt,omitempty"`
	PointsToNextBelt int64      `json:"points_to_next_belt"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PointsHistoryResponse is one ledger entry.
type PointsHistoryResponse struct {
	ID           uint      `json:"id"`
	Points       int64     `json:"points"`
	Reason       string    `json:"reason"`
	ActivityType string    `json:"activity_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewPointsHistoryResponseSlice converts ledger entries to DTOs.
func NewPointsHistoryResponseSlice(entries []models.PointsHistoryEntry) []PointsHistoryResponse {
	out := make([]PointsHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, PointsHistoryResponse{
			ID:           entry.ID,
			Points:       entry.Points,
			Reason:       entry.Reason,
			ActivityType: entry.ActivityType,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return out
}

// AwardBadgeRequest grants a catalog badge.
type AwardBadgeRequest struct {
	StudentID uint   `json:"student_id" validate:"required"`
	BadgeCode string `json:"badge_code" validate:"required,max=64"`
}

// BadgeResponse describes a catalog badge.
type BadgeResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Criteria    string `json:"criteria,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// NewBadgeResponse converts a badge model to DTO.
func NewBadgeResponse(model models.Badge) BadgeResponse {
	return BadgeResponse{
		Code:        model.Code,
		Name:        model.Name,
		Description: model.Description,
		Criteria:    model.Criteria,
		Icon:        model.Icon,
	}
}

// BadgeAwardResult reports a badge grant. A repeated grant is not an error.
type BadgeAwardResult struct {
	Success bool          `json:"success"`
	Reason  string        `json:"reason,omitempty"`
	Badge   BadgeResponse `json:"badge"`
}

// StudentBadgeResponse is a badge held by a student.
type StudentBadgeResponse struct {
	Badge     BadgeResponse `json:"badge"`
	AwardedAt time.Time     `json:"awarded_at"`
}

// NewStudentBadgeResponseSlice converts awarded badges to DTOs.
func NewStudentBadgeResponseSlice(awards []models.StudentBadge) []StudentBadgeResponse {
	out := make([]StudentBadgeResponse, 0, len(awards))
	for _, award := range awards {
		badge := NewBadgeResponse(award.Badge)
		if badge.Code == "" {
			badge.Code = award.BadgeCode
		}
		out = append(out, StudentBadgeResponse{Badge: badge, AwardedAt: award.AwardedAt})
	}
	return out
}
