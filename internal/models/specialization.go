package models

import "time"

// Bonus types granted by skills.
const (
	BonusPointsMultiplier = "points_multiplier"
	BonusStreakMultiplier = "streak_multiplier"
	BonusShopDiscount     = "shop_discount"
)

// Specialization is a skill-tree family a student may commit to once.
type Specialization struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Skill is a node of a specialization's tree.
type Skill struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	SpecializationCode  string    `gorm:"size:64;not null;index" json:"specialization_code"`
	Code                string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name                string    `gorm:"size:128;not null" json:"name"`
	Description         string    `gorm:"type:text" json:"description"`
	Tier                int       `gorm:"not null" json:"tier"`
	BonusType           string    `gorm:"size:32;not null" json:"bonus_type"`
	BonusValue          float64   `gorm:"not null" json:"bonus_value"`
	PrerequisiteSkillID *uint     `json:"prerequisite_skill_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// StudentSpecialization is the permanent specialization choice of a student.
type StudentSpecialization struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	StudentID          uint      `gorm:"uniqueIndex;not null" json:"student_id"`
	SpecializationCode string    `gorm:"size:64;not null" json:"specialization_code"`
	Level              int       `gorm:"not null" json:"level"`
	HonorificTitle     string    `gorm:"size:128" json:"honorific_title"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// StudentSkill records an unlocked skill.
type StudentSkill struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_student_skill,priority:1" json:"student_id"`
	SkillID    uint      `gorm:"not null;uniqueIndex:idx_student_skill,priority:2" json:"skill_id"`
	UnlockedAt time.Time `gorm:"not null" json:"unlocked_at"`
	Skill      Skill     `json:"skill"`
}
