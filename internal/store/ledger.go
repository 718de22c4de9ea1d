package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/veydran/directorate/internal/model"
)

// LedgerStore owns the transaction log and the derived credits/balance
// fields on users. It is the only writer of either.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

const txCols = `id, user_id, type, amount_cr, amount_pay, related_ticket, approved_by, created_at`

func scanTransaction(scanner interface{ Scan(...any) error }) (*model.Transaction, error) {
	var t model.Transaction
	var relatedTicket, approvedBy sql.NullString

	err := scanner.Scan(&t.ID, &t.UserID, &t.Type, &t.AmountCredits, &t.AmountPay,
		&relatedTicket, &approvedBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	t.RelatedTicket = idFromNull(relatedTicket)
	t.ApprovedBy = idFromNull(approvedBy)
	return &t, nil
}

// ApplyDelta increments the user's credits and balance and records the
// matching transaction in a single SQL transaction: both land together or
// neither does. The increments are relative, so concurrent deltas for the
// same user are additive rather than last-writer-wins.
func (s *LedgerStore) ApplyDelta(userID model.ID, creditsDelta int, payDelta float64, txType string, relatedTicket, approvedBy *model.ID) (*model.User, *model.Transaction, error) {
	now := time.Now().UTC()
	txnID := model.NewID()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE users SET credits = credits + ?, balance = balance + ?, updated_at = ? WHERE id = ?`,
		creditsDelta, payDelta, now, userID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("apply delta: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	_, err = tx.Exec(
		`INSERT INTO transactions (id, user_id, type, amount_cr, amount_pay, related_ticket, approved_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txnID, userID, txType, creditsDelta, payDelta, nullID(relatedTicket), nullID(approvedBy), now,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit ledger tx: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, userID)
	user, err := scanUser(row)
	if err != nil {
		return nil, nil, fmt.Errorf("reload user: %w", err)
	}

	row = s.db.QueryRow(`SELECT `+txCols+` FROM transactions WHERE id = ?`, txnID)
	txn, err := scanTransaction(row)
	if err != nil {
		return nil, nil, fmt.Errorf("reload transaction: %w", err)
	}

	return user, txn, nil
}

// ListByUser returns a user's transactions, newest first. Insertion order
// via rowid breaks ties between same-timestamp entries.
func (s *LedgerStore) ListByUser(userID model.ID) ([]model.Transaction, error) {
	rows, err := s.db.Query(
		`SELECT `+txCols+` FROM transactions WHERE user_id = ? ORDER BY rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}
