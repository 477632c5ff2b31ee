// Package notifications is the groomer-facing inbox over the events the
// scheduling core emits.
package notifications

import (
	"context"

	"github.com/google/uuid"

	"groomcal/backend/internal/domain"
	"groomcal/backend/internal/store"
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Service struct {
	repo store.NotificationRepository
}

func NewService(repo store.NotificationRepository) *Service {
	return &Service{repo: repo}
}

// List returns the groomer's events, newest first. unreadOnly narrows to
// events not yet marked read.
func (s *Service) List(ctx context.Context, groomerID string, unreadOnly bool) ([]domain.NotificationEvent, error) {
	if groomerID == "" {
		return nil, &ValidationError{Message: "groomer_id is required"}
	}
	return s.repo.List(ctx, groomerID, unreadOnly)
}

func (s *Service) UnreadCount(ctx context.Context, groomerID string) (int64, error) {
	if groomerID == "" {
		return 0, &ValidationError{Message: "groomer_id is required"}
	}
	return s.repo.UnreadCount(ctx, groomerID)
}

// MarkRead flags one event as read. The groomer scope is part of the key,
// so a groomer cannot touch another inbox; a mismatch reads as not found.
func (s *Service) MarkRead(ctx context.Context, groomerID string, id uuid.UUID) (domain.NotificationEvent, error) {
	if groomerID == "" {
		return domain.NotificationEvent{}, &ValidationError{Message: "groomer_id is required"}
	}
	if id == uuid.Nil {
		return domain.NotificationEvent{}, &ValidationError{Message: "notification id is required"}
	}
	return s.repo.MarkRead(ctx, groomerID, id)
}

// MarkAllRead flags every unread event of the groomer and reports how many
// it touched.
func (s *Service) MarkAllRead(ctx context.Context, groomerID string) (int64, error) {
	if groomerID == "" {
		return 0, &ValidationError{Message: "groomer_id is required"}
	}
	return s.repo.MarkAllRead(ctx, groomerID)
}
