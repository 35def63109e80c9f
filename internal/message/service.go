// File: internal/message/service.go
package message

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"barter_backend/internal/common"
	"barter_backend/internal/notification"
	"barter_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the operations the message domain exposes. Conversations
// are addressed by the other user's username.
type Service interface {
	Send(ctx context.Context, senderID uuid.UUID, recipientUsername string, req SendMessageRequest) (*MessageResponse, error)
	ViewConversation(ctx context.Context, userID uuid.UUID, otherUsername string) ([]MessageResponse, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo   Repository
	users  shared.Service
	logger *zap.Logger
}

// NewService creates a new message service.
func NewService(repo Repository, users shared.Service, logger *zap.Logger) Service {
	return &service{repo: repo, users: users, logger: logger.Named("MessageService")}
}

func (s *service) Send(ctx context.Context, senderID uuid.UUID, recipientUsername string, req SendMessageRequest) (*MessageResponse, error) {
	recipient, err := s.users.GetUserByUsername(ctx, recipientUsername)
	if err != nil {
		return nil, err
	}
	if recipient.ID == senderID {
		return nil, common.ErrUnprocessableEntity.WithDetails("You cannot message yourself.")
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, common.ErrUnprocessableEntity.WithDetails("Message body cannot be empty.")
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	m := &Message{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Subject:     strings.TrimSpace(req.Subject),
		Body:        body,
	}
	n := &notification.Notification{
		RecipientID: recipient.ID,
		ActorID:     &senderID,
		Type:        notification.TypeNewMessage,
		Title:       fmt.Sprintf("New message from %s", sender.Username),
		Message:     fmt.Sprintf("%s sent you a message.", sender.Username),
	}

	if err := s.repo.Create(ctx, m, n); err != nil {
		return nil, err
	}
	s.logger.Debug("Message sent",
		zap.String("senderID", senderID.String()),
		zap.String("recipientID", recipient.ID.String()))

	resp := ToMessageResponse(m)
	return &resp, nil
}

// ViewConversation returns the full thread with another user and marks
// everything they sent as read.
func (s *service) ViewConversation(ctx context.Context, userID uuid.UUID, otherUsername string) ([]MessageResponse, error) {
	other, err := s.users.GetUserByUsername(ctx, otherUsername)
	if err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListConversation(ctx, userID, other.ID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.MarkConversationRead(ctx, userID, other.ID); err != nil {
		s.logger.Warn("Failed to mark conversation read",
			zap.String("userID", userID.String()), zap.Error(err))
	}

	responses := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		responses = append(responses, ToMessageResponse(&msgs[i]))
	}
	return responses, nil
}

// ListConversations builds the inbox view: one summary per counterparty,
// newest conversation first.
func (s *service) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error) {
	partners, err := s.repo.ConversationPartners(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(partners))
	for _, partnerID := range partners {
		partner, err := s.users.GetUserByID(ctx, partnerID)
		if err != nil {
			// Deleted accounts drop out of the list.
			continue
		}
		last, err := s.repo.LastMessageBetween(ctx, userID, partnerID)
		if err != nil {
			return nil, err
		}
		unread, err := s.repo.CountUnreadFrom(ctx, userID, partnerID)
		if err != nil {
			return nil, err
		}

		summary := ConversationSummary{
			UserID:      partner.ID,
			Username:    partner.Username,
			UnreadCount: unread,
		}
		if last != nil {
			lastResp := ToMessageResponse(last)
			summary.LastMessage = &lastResp
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		if a == nil || b == nil {
			return b == nil
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return summaries, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
