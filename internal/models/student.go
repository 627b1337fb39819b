package models

import "time"

// Student represents a learner enrolled on the platform.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubjectEnrollment scopes a student to a subject leaderboard.
type SubjectEnrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SubjectID uint      `gorm:"not null;uniqueIndex:idx_subject_student,priority:1" json:"subject_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_subject_student,priority:2;index" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// All returns every model managed by the progression engine, in migration order.
func All() []interface{} {
	return []interface{}{
		&Student{},
		&SubjectEnrollment{},
		&StudentProgression{},
		&PointsHistoryEntry{},
		&BeltHistory{},
		&Badge{},
		&StudentBadge{},
		&Specialization{},
		&Skill{},
		&StudentSpecialization{},
		&StudentSkill{},
		&ShopItem{},
		&StudentPurchase{},
		&StudentEquipment{},
		&GamificationNotification{},
	}
}
