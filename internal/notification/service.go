// File: internal/notification/service.go
package notification

import (
	"context"

	"barter_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the operations the notification domain exposes.
// Notifications are only ever written by other domains through CreateInTx,
// atomically with the event that caused them.
type Service interface {
	List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, pageSize int) ([]NotificationResponse, *common.Pagination, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, recipientID uuid.UUID) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger.Named("NotificationService")}
}

func (s *service) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, pageSize int) ([]NotificationResponse, *common.Pagination, error) {
	items, total, err := s.repo.ListForRecipient(ctx, recipientID, unreadOnly, page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	responses := make([]NotificationResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToNotificationResponse(&items[i]))
	}
	return responses, common.NewPagination(total, page, pageSize), nil
}

func (s *service) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

func (s *service) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, recipientID)
}

func (s *service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipientID)
}

func (s *service) Delete(ctx context.Context, id, recipientID uuid.UUID) error {
	return s.repo.Delete(ctx, id, recipientID)
}
