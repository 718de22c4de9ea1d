package model

import "time"

// PushSubscription is a browser push endpoint registered by a user for
// out-of-band notification delivery.
type PushSubscription struct {
	ID        int64     `json:"id"`
	UserID    ID        `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"-"`
	AuthKey   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
