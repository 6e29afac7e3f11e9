package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/the-y0gi/Go-Apply-sub000/logger"
	"github.com/the-y0gi/Go-Apply-sub000/models"
	"github.com/the-y0gi/Go-Apply-sub000/ws"
)

// NotificationService persists lifecycle notifications and pushes them to
// connected clients. It is strictly best-effort: failures are logged and
// never propagated, so a lost notification can't roll back the state
// transition that emitted it.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) Notify(userID, category, title, message, relatedID string) {
	noti := models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  category,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if err := s.db.Create(&noti).Error; err != nil {
		logger.Log.Warn().Err(err).Str("user_id", userID).Msg("notification persist failed")
		return
	}

	ws.SendNotification(noti)

	var unread int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err == nil {
		ws.SendBadgeUpdate(userID, unread)
	}
}

func (s *NotificationService) ListByUser(userID string) ([]models.Notification, error) {
	var notis []models.Notification
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notis).Error
	return notis, err
}

func (s *NotificationService) MarkRead(userID, id string) error {
	return s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

func (s *NotificationService) MarkAllRead(userID string) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
