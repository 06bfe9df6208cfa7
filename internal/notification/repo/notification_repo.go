package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/notification/entity"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
)

// removedMask selects the removed bit of a notification status.
var removedMask = status.Flags(0).With(status.Notification.MustIndex("removed"), true)

type NotificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	const q = `INSERT INTO notifications (id, user_id, notice_time, description, status)
		VALUES (:id, :user_id, :notice_time, :description, :status)`
	_, err := r.db.NamedExecContext(ctx, q, n)
	return err
}

// Get returns nil when absent.
func (r *NotificationRepo) Get(ctx context.Context, id string) (*entity.Notification, error) {
	const q = `SELECT id, user_id, notice_time, description, status FROM notifications WHERE id = $1`
	var n entity.Notification
	if err := r.db.GetContext(ctx, &n, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := status.Notification.Validate(n.Status); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByUser skips rows with the removed bit set.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string) ([]entity.Notification, error) {
	const q = `SELECT id, user_id, notice_time, description, status FROM notifications
		WHERE user_id = $1 AND (status & $2) = 0 ORDER BY notice_time DESC`
	out := []entity.Notification{}
	if err := r.db.SelectContext(ctx, &out, q, userID, removedMask); err != nil {
		return nil, err
	}
	for i := range out {
		if err := status.Notification.Validate(out[i].Status); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *NotificationRepo) UpdateStatus(ctx context.Context, id string, s status.Flags) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET status = $2 WHERE id = $1`, id, s)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
