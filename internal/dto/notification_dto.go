package dto

import (
	"time"

	"github.com/noah-isme/gema-progression/internal/models"
)

// NotificationListRequest pages a student's notifications.
type NotificationListRequest struct {
	UnreadOnly bool `query:"unread"`
	Limit      int  `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset     int  `query:"offset" validate:"omitempty,min=0"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID        uint                   `json:"id"`
	StudentID uint                   `json:"student_id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	IsRead    bool                   `json:"is_read"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.GamificationNotification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		StudentID: model.StudentID,
		Type:      model.Type,
		Title:     model.Title,
		Message:   model.Message,
		Payload:   model.Payload,
		IsRead:    model.IsRead,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice to DTOs.
func NewNotificationResponseSlice(items []models.GamificationNotification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}
