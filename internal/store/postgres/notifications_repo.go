package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"groomcal/backend/internal/domain"
	"groomcal/backend/internal/store"
)

type NotificationRepo struct {
	db *bun.DB
}

func NewNotificationRepo(db *bun.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) List(ctx context.Context, groomerID string, unreadOnly bool) ([]domain.NotificationEvent, error) {
	var rows []domain.NotificationEvent
	q := r.db.NewSelect().
		Model(&rows).
		Where("groomer_id = ?", groomerID).
		OrderExpr("created_at DESC")
	if unreadOnly {
		q = q.Where("NOT read")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, groomerID string) (int64, error) {
	count, err := r.db.NewSelect().
		Model((*domain.NotificationEvent)(nil)).
		Where("groomer_id = ?", groomerID).
		Where("NOT read").
		Count(ctx)
	if err != nil {
		return 0, err
	}
	return int64(count), nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, groomerID string, id uuid.UUID) (domain.NotificationEvent, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.NotificationEvent)(nil)).
		Set("read = TRUE").
		Where("id = ?", id).
		Where("groomer_id = ?", groomerID).
		Exec(ctx)
	if err != nil {
		return domain.NotificationEvent{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.NotificationEvent{}, err
	}
	if affected == 0 {
		return domain.NotificationEvent{}, store.ErrNotFound
	}

	var ev domain.NotificationEvent
	err = r.db.NewSelect().
		Model(&ev).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotificationEvent{}, store.ErrNotFound
		}
		return domain.NotificationEvent{}, err
	}
	return ev, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, groomerID string) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.NotificationEvent)(nil)).
		Set("read = TRUE").
		Where("groomer_id = ?", groomerID).
		Where("NOT read").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
