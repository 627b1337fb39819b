package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types emitted by the progression engine.
const (
	NotificationBeltUpgrade           = "belt_upgrade"
	NotificationBadgeUnlocked         = "badge_unlocked"
	NotificationSkillUnlocked         = "skill_unlocked"
	NotificationSpecializationLevelUp = "specialization_level_up"
)

// GamificationNotification is a progression event waiting to be delivered.
type GamificationNotification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	StudentID uint              `gorm:"not null;index" json:"student_id"`
	Type      string            `gorm:"size:64;not null" json:"type"`
	Title     string            `gorm:"size:255" json:"title"`
	Message   string            `gorm:"type:text" json:"message"`
	Payload   datatypes.JSONMap `gorm:"type:json" json:"payload"`
	IsRead    bool              `gorm:"not null" json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
