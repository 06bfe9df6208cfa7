// Package notification stores per-user notices such as password change alerts.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/notification/entity"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
	"github.com/ovaphlow/onlyarts/service-core-go/pkg/utilities"
)

type Repository interface {
	Create(ctx context.Context, n *entity.Notification) error
	Get(ctx context.Context, id string) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Notification, error)
	UpdateStatus(ctx context.Context, id string, s status.Flags) (bool, error)
}

var ErrNotFound = errors.New("notification not found")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

// Notify stores a new unseen notice for userID.
func (s *Service) Notify(ctx context.Context, userID, description string) (*entity.Notification, error) {
	n := &entity.Notification{
		ID:          utilities.NewSnowflakeID(),
		UserID:      userID,
		NoticeTime:  s.now().UTC(),
		Description: description,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]entity.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

// MarkSeen sets the seen bit. Notices of other users are reported as not found.
func (s *Service) MarkSeen(ctx context.Context, userID, id string) error {
	return s.update(ctx, userID, id, (*entity.Notification).WithSeen)
}

// Remove sets the removed bit; the row is kept.
func (s *Service) Remove(ctx context.Context, userID, id string) error {
	return s.update(ctx, userID, id, (*entity.Notification).WithRemoved)
}

func (s *Service) update(ctx context.Context, userID, id string, next func(*entity.Notification) status.Flags) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if n == nil || n.UserID != userID || n.IsRemoved() {
		return ErrNotFound
	}
	ns := next(n)
	if ns == n.Status {
		return nil
	}
	ok, err := s.repo.UpdateStatus(ctx, id, ns)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
