package model

import (
	"time"

	"github.com/veydran/directorate/internal/rank"
)

type TicketStatus string

const (
	StatusOpen           TicketStatus = "open"
	StatusAwaitingReview TicketStatus = "awaiting_review"
	StatusClosed         TicketStatus = "closed"
)

// Ticket is a unit of work with a reward attached. RewardCredits and
// RewardPay stay zero until the ticket is closed; TargetRank is the rank
// whose sign-off is required next and only ever moves up the ladder.
type Ticket struct {
	ID            ID                 `json:"id"`
	Title         string             `json:"title"`
	BodyMD        string             `json:"body_md"`
	Category      string             `json:"category"`
	SubCategory   string             `json:"sub_category"`
	Status        TicketStatus       `json:"status"`
	Visibility    string             `json:"visibility"`
	AuthorID      ID                 `json:"author_id"`
	AssigneeID    ID                 `json:"assignee_id"`
	TargetRank    rank.Rank          `json:"target_rank"`
	Watchers      []ID               `json:"watchers"`
	Comments      []CommentEntry     `json:"comments"`
	RewardCredits int                `json:"reward_credits"`
	RewardPay     float64            `json:"reward_pay"`
	ApprovalLog   []ApprovalLogEntry `json:"approval_log"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CommentEntry is one append-only comment on a ticket.
type CommentEntry struct {
	ID        int64     `json:"id"`
	AuthorID  ID        `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ApprovalLogEntry records one finalized approval. ApproverID is nil when
// the approval came in without an identified approver.
type ApprovalLogEntry struct {
	ID         int64     `json:"id"`
	ApproverID *ID       `json:"approver_id"`
	Credits    int       `json:"credits"`
	Pay        float64   `json:"pay"`
	CreatedAt  time.Time `json:"created_at"`
}
