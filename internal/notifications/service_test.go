package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"groomcal/backend/internal/domain"
	"groomcal/backend/internal/store"
)

type fakeRepo struct {
	listFn        func(ctx context.Context, groomerID string, unreadOnly bool) ([]domain.NotificationEvent, error)
	unreadCountFn func(ctx context.Context, groomerID string) (int64, error)
	markReadFn    func(ctx context.Context, groomerID string, id uuid.UUID) (domain.NotificationEvent, error)
	markAllReadFn func(ctx context.Context, groomerID string) (int64, error)
}

func (f *fakeRepo) List(ctx context.Context, groomerID string, unreadOnly bool) ([]domain.NotificationEvent, error) {
	return f.listFn(ctx, groomerID, unreadOnly)
}

func (f *fakeRepo) UnreadCount(ctx context.Context, groomerID string) (int64, error) {
	return f.unreadCountFn(ctx, groomerID)
}

func (f *fakeRepo) MarkRead(ctx context.Context, groomerID string, id uuid.UUID) (domain.NotificationEvent, error) {
	return f.markReadFn(ctx, groomerID, id)
}

func (f *fakeRepo) MarkAllRead(ctx context.Context, groomerID string) (int64, error) {
	return f.markAllReadFn(ctx, groomerID)
}

func TestList(t *testing.T) {
	want := []domain.NotificationEvent{
		{ID: uuid.New(), GroomerID: "g1", Kind: domain.NotificationNewAppointment, CreatedAt: time.Now()},
	}
	var gotUnreadOnly bool
	svc := NewService(&fakeRepo{
		listFn: func(ctx context.Context, groomerID string, unreadOnly bool) ([]domain.NotificationEvent, error) {
			if groomerID != "g1" {
				t.Errorf("groomerID = %q, want g1", groomerID)
			}
			gotUnreadOnly = unreadOnly
			return want, nil
		},
	})

	got, err := svc.List(context.Background(), "g1", true)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 1 || got[0].ID != want[0].ID {
		t.Fatalf("got = %v, want %v", got, want)
	}
	if !gotUnreadOnly {
		t.Fatalf("unreadOnly not passed through")
	}
}

func TestList_RequiresGroomer(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.List(context.Background(), "", false)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}

func TestMarkRead_NotFoundPassesThrough(t *testing.T) {
	svc := NewService(&fakeRepo{
		markReadFn: func(ctx context.Context, groomerID string, id uuid.UUID) (domain.NotificationEvent, error) {
			return domain.NotificationEvent{}, store.ErrNotFound
		},
	})

	_, err := svc.MarkRead(context.Background(), "g1", uuid.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want store.ErrNotFound", err)
	}
}

func TestMarkRead_RequiresID(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.MarkRead(context.Background(), "g1", uuid.Nil)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	svc := NewService(&fakeRepo{
		markAllReadFn: func(ctx context.Context, groomerID string) (int64, error) {
			return 3, nil
		},
	})

	n, err := svc.MarkAllRead(context.Background(), "g1")
	if err != nil {
		t.Fatalf("MarkAllRead error: %v", err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
}
