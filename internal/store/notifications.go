package store

import (
	"context"

	"github.com/google/uuid"

	"groomcal/backend/internal/domain"
)

// NotificationRepository is the groomer-facing notification inbox. The read
// flag is the only field it mutates.
type NotificationRepository interface {
	List(ctx context.Context, groomerID string, unreadOnly bool) ([]domain.NotificationEvent, error)
	UnreadCount(ctx context.Context, groomerID string) (int64, error)
	MarkRead(ctx context.Context, groomerID string, id uuid.UUID) (domain.NotificationEvent, error)
	MarkAllRead(ctx context.Context, groomerID string) (int64, error)
}
