package model

import (
	"time"

	"github.com/veydran/directorate/internal/rank"
)

// User is an operative on the roster. Credits and balance are never written
// directly — every change goes through the ledger as a recorded transaction.
type User struct {
	ID           ID        `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Rank         rank.Rank `json:"rank"`
	ReportsTo    *ID       `json:"reports_to"`
	Hidden       bool      `json:"hidden"`
	Credits      int       `json:"credits"`
	Balance      float64   `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
