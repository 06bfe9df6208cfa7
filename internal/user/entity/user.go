package entity

import (
	"time"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
)

var (
	bitOnline  = status.User.MustIndex("online")
	bitRemoved = status.User.MustIndex("removed")
	bitBanned  = status.User.MustIndex("banned")
)

// User represents an account row in the `users` table.
// PasswordHash is never serialized.
type User struct {
	ID           string       `db:"id" json:"user_id"`
	RoleID       string       `db:"role_id" json:"role_id"`
	FirstName    string       `db:"first_name" json:"first_name"`
	LastName     string       `db:"last_name" json:"last_name"`
	Avatar       string       `db:"avatar" json:"avatar"`
	Phone        string       `db:"phone" json:"phone"`
	Email        string       `db:"email" json:"email"`
	Address      string       `db:"address" json:"address"`
	Bio          string       `db:"bio" json:"bio"`
	JoinDate     time.Time    `db:"join_date" json:"join_date"`
	Status       status.Flags `db:"status" json:"status"`
	PasswordHash string       `db:"password" json:"-"`
}

func (u *User) IsOnline() bool  { return u.Status.Has(bitOnline) }
func (u *User) IsRemoved() bool { return u.Status.Has(bitRemoved) }
func (u *User) IsBanned() bool  { return u.Status.Has(bitBanned) }

// WithOnline returns the status word with only the online bit changed.
func (u *User) WithOnline(v bool) status.Flags { return u.Status.With(bitOnline, v) }
