package models

import "time"

// Activity types accepted by the points ledger.
const (
	ActivityExercise   = "exercise"
	ActivityAssignment = "assignment"
	ActivityAttendance = "attendance"
	ActivityQuiz       = "quiz"
	ActivityProject    = "project"
	ActivityChallenge  = "challenge"
	ActivityBonus      = "bonus"
	ActivityManual     = "manual"
)

// StudentProgression is the denormalised progression snapshot of a student.
// CurrentBelt and BeltLevel are always derived from TotalPoints.
type StudentProgression struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	StudentID        uint       `gorm:"uniqueIndex;not null" json:"student_id"`
	TotalPoints      int64      `gorm:"not null;index" json:"total_points"`
	CurrentBelt      string     `gorm:"size:16;not null" json:"current_belt"`
	BeltLevel        int        `gorm:"not null" json:"belt_level"`
	StreakDays       int        `gorm:"not null" json:"streak_days"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	Version          int64      `gorm:"not null" json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// PointsHistoryEntry is one append-only ledger line.
type PointsHistoryEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;index:idx_points_history_student_created,priority:1" json:"student_id"`
	Points       int64     `gorm:"not null" json:"points"`
	Reason       string    `gorm:"size:255" json:"reason"`
	ActivityType string    `gorm:"size:32;not null" json:"activity_type"`
	CreatedAt    time.Time `gorm:"index:idx_points_history_student_created,priority:2" json:"created_at"`
}

// BeltHistory audits every belt upgrade.
type BeltHistory struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StudentID       uint      `gorm:"not null;index" json:"student_id"`
	PreviousBelt    string    `gorm:"size:16;not null" json:"previous_belt"`
	NewBelt         string    `gorm:"size:16;not null" json:"new_belt"`
	PreviousLevel   int       `gorm:"not null" json:"previous_level"`
	NewLevel        int       `gorm:"not null" json:"new_level"`
	PointsAtUpgrade int64     `gorm:"not null" json:"points_at_upgrade"`
	CreatedAt       time.Time `json:"created_at"`
}
