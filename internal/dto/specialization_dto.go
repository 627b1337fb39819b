package dto

import (
	"time"

	"github.com/noah-isme/gema-progression/internal/models"
)

// ChooseSpecializationRequest commits a student to a specialization.
type ChooseSpecializationRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// SpecializationResponse describes a specialization a student may choose.
type SpecializationResponse struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Skills      int    `json:"skills"`
}

// StudentSpecializationResponse is the chosen specialization of a student.
type StudentSpecializationResponse struct {
	StudentID          uint      `json:"student_id"`
	SpecializationCode string    `json:"specialization_code"`
	Level              int       `json:"level"`
	HonorificTitle     string    `json:"honorific_title,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewStudentSpecializationResponse converts the model to DTO.
func NewStudentSpecializationResponse(model models.StudentSpecialization) StudentSpecializationResponse {
	return StudentSpecializationResponse{
		StudentID:          model.StudentID,
		SpecializationCode: model.SpecializationCode,
		Level:              model.Level,
		HonorificTitle:     model.HonorificTitle,
		CreatedAt:          model.CreatedAt,
	}
}

// SkillResponse describes a skill tree node.
type SkillResponse struct {
	ID                  uint    `json:"id"`
	Code                string  `json:"code"`
	SpecializationCode  string  `json:"specialization_code"`
	Name                string  `json:"name"`
	Description         string  `json:"description,omitempty"`
	Tier                int     `json:"tier"`
	BonusType           string  `json:"bonus_type"`
	BonusValue          float64 `json:"bonus_value"`
	PrerequisiteSkillID *uint   `json:"prerequisite_skill_id,omitempty"`
	Unlocked            bool    `json:"unlocked"`
}

// NewSkillResponse converts a skill model to DTO.
func NewSkillResponse(model models.Skill) SkillResponse {
	return SkillResponse{
		ID:                  model.ID,
		Code:                model.Code,
		SpecializationCode:  model.SpecializationCode,
		Name:                model.Name,
		Description:         model.Description,
		Tier:                model.Tier,
		BonusType:           model.BonusType,
		BonusValue:          model.BonusValue,
		PrerequisiteSkillID: model.PrerequisiteSkillID,
	}
}

// SkillUnlockResult reports a skill unlock. A repeated unlock is not an error.
type SkillUnlockResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Skill   SkillResponse `json:"skill"`
}

// LevelUpResult reports a specialization level check.
type LevelUpResult struct {
	LevelUp        bool   `json:"level_up"`
	Level          int    `json:"level"`
	HonorificTitle string `json:"honorific_title,omitempty"`
}

// MultiplierResponse is the derived bonus multiplier for one bonus type.
type MultiplierResponse struct {
	BonusType  string  `json:"bonus_type"`
	Multiplier float64 `json:"multiplier"`
}
