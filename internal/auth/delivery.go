package auth

import (
	"context"

	"go.uber.org/zap"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/user/entity"
)

// ResetDelivery sends a password reset token to its owner out-of-band.
type ResetDelivery interface {
	DeliverResetToken(ctx context.Context, u *entity.User, value string) error
}

// LogDelivery writes reset tokens to the debug log; for development only.
type LogDelivery struct {
	Logger *zap.SugaredLogger
}

func (d LogDelivery) DeliverResetToken(_ context.Context, u *entity.User, value string) error {
	d.Logger.Debugw("password reset token", "user_id", u.ID, "email", u.Email, "token", value)
	return nil
}

// Notifier records a notice for a user, e.g. after a password change.
type Notifier interface {
	Notify(ctx context.Context, userID, description string) error
}

type NotifierFunc func(ctx context.Context, userID, description string) error

func (f NotifierFunc) Notify(ctx context.Context, userID, description string) error {
	return f(ctx, userID, description)
}
