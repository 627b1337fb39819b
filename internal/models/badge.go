package models

import "time"

// Badge is a catalog entry for a one-time achievement.
type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Criteria    string    `gorm:"type:text" json:"criteria"`
	Icon        string    `gorm:"size:64" json:"icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StudentBadge records that a badge was awarded. The composite unique index
// guarantees one row per student and badge even under retried requests.
type StudentBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_student_badge,priority:1" json:"student_id"`
	BadgeCode string    `gorm:"size:64;not null;uniqueIndex:idx_student_badge,priority:2" json:"badge_code"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`
	Badge     Badge     `gorm:"foreignKey:BadgeCode;references:Code" json:"badge"`
}
