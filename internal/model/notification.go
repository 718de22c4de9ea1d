package model

import "time"

type Notification struct {
	ID        ID        `json:"id"`
	UserID    ID        `json:"user_id"`
	Message   string    `json:"message"`
	TicketID  *ID       `json:"ticket_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"ts"`
}
