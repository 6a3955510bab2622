package services

import (
	"context"

	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/pharmalog/elogbook-api/internal/repository"
)

// NotificationService handles user notifications
type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo}
}

// NotifyUser creates a notification for a single user
func (s *NotificationService) NotifyUser(ctx context.Context, userID uint, title, message, notificationType string) error {
	return s.repo.Create(ctx, &models.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		NotificationType: &notificationType,
	})
}

// NotifyReviewers fans a notification out to every active QA and Admin user
func (s *NotificationService) NotifyReviewers(ctx context.Context, title, message, notificationType string) error {
	reviewers, err := s.userRepo.FindActiveByRoles(ctx, models.RoleQA, models.RoleAdmin)
	if err != nil {
		return err
	}
	for _, reviewer := range reviewers {
		if err := s.NotifyUser(ctx, reviewer.ID, title, message, notificationType); err != nil {
			return err
		}
	}
	return nil
}

// NotifyEngineers fans a notification out to every active Engineer
func (s *NotificationService) NotifyEngineers(ctx context.Context, title, message, notificationType string) error {
	engineers, err := s.userRepo.FindActiveByRoles(ctx, models.RoleEngineer)
	if err != nil {
		return err
	}
	for _, engineer := range engineers {
		if err := s.NotifyUser(ctx, engineer.ID, title, message, notificationType); err != nil {
			return err
		}
	}
	return nil
}

// List returns notifications for a user, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

// MarkAsRead marks one notification as read. Users can only touch their own.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uint) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if n.UserID != userID {
		return ErrForbidden
	}
	if n.IsRead() {
		return nil
	}
	n.MarkAsRead()
	return s.repo.Update(ctx, n)
}

// MarkAllAsRead marks every unread notification for a user as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}
