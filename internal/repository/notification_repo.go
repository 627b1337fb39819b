package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progression/internal/models"
)

// NotificationRepository handles persistence for gamification notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.GamificationNotification) error
	ListByStudent(ctx context.Context, studentID uint, unreadOnly bool, limit, offset int) ([]models.GamificationNotification, error)
	MarkRead(ctx context.Context, id, studentID uint) (models.GamificationNotification, error)
	FindByID(ctx context.Context, id uint) (models.GamificationNotification, error)
	CountByStudent(ctx context.Context, studentID uint, notificationType string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository constructs a repository backed by GORM.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.GamificationNotification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListByStudent(ctx context.Context, studentID uint, unreadOnly bool, limit, offset int) ([]models.GamificationNotification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.GamificationNotification
	if err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, studentID uint) (models.GamificationNotification, error) {
	var notification models.GamificationNotification
	if err := r.db.WithContext(ctx).Where("id = ? AND student_id = ?", id, studentID).First(&notification).Error; err != nil {
		return models.GamificationNotification{}, err
	}

	if notification.IsRead {
		return notification, nil
	}

	if err := r.db.WithContext(ctx).
		Model(&notification).
		Update("is_read", true).Error; err != nil {
		return models.GamificationNotification{}, err
	}
	notification.IsRead = true

	return notification, nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id uint) (models.GamificationNotification, error) {
	var notification models.GamificationNotification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return models.GamificationNotification{}, err
	}
	return notification, nil
}

// CountByStudent counts notifications of one type, or of every type when notificationType is empty.
func (r *notificationRepository) CountByStudent(ctx context.Context, studentID uint, notificationType string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.GamificationNotification{}).Where("student_id = ?", studentID)
	if notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
