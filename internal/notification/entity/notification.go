package entity

import (
	"time"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
)

var (
	bitRemoved = status.Notification.MustIndex("removed")
	bitSeen    = status.Notification.MustIndex("seen")
)

type Notification struct {
	ID          string       `db:"id" json:"id"`
	UserID      string       `db:"user_id" json:"user_id"`
	NoticeTime  time.Time    `db:"notice_time" json:"notice_time"`
	Description string       `db:"description" json:"description"`
	Status      status.Flags `db:"status" json:"-"`
}

func (n *Notification) IsSeen() bool    { return n.Status.Has(bitSeen) }
func (n *Notification) IsRemoved() bool { return n.Status.Has(bitRemoved) }

func (n *Notification) WithSeen() status.Flags    { return n.Status.With(bitSeen, true) }
func (n *Notification) WithRemoved() status.Flags { return n.Status.With(bitRemoved, true) }
