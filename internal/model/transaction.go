package model

import "time"

const (
	TxPayment   = "payment"
	TxManualAdj = "manual_adj"
)

// Transaction is an immutable ledger entry. It is created as a side effect
// of a balance change and never updated or deleted afterwards.
type Transaction struct {
	ID            ID        `json:"id"`
	UserID        ID        `json:"user_id"`
	Type          string    `json:"type"`
	AmountCredits int       `json:"amount_cr"`
	AmountPay     float64   `json:"amount_pay"`
	RelatedTicket *ID       `json:"related_ticket"`
	ApprovedBy    *ID       `json:"approved_by"`
	CreatedAt     time.Time `json:"ts"`
}
