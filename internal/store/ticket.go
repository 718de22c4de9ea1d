package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/veydran/directorate/internal/model"
	"github.com/veydran/directorate/internal/rank"
)

type TicketStore struct {
	db *sql.DB
}

func NewTicketStore(db *sql.DB) *TicketStore {
	return &TicketStore{db: db}
}

// TicketDraft carries the caller-supplied fields for a new ticket.
type TicketDraft struct {
	Title       string
	BodyMD      string
	Category    string
	SubCategory string
	Visibility  string
	AuthorID    model.ID
	AssigneeID  model.ID
	TargetRank  rank.Rank
	Watchers    []model.ID
}

// TicketPatch is a partial update merged into a ticket on submit. Nil fields
// are left untouched.
type TicketPatch struct {
	Title       *string
	BodyMD      *string
	Category    *string
	SubCategory *string
	Visibility  *string
	AssigneeID  *model.ID
}

const ticketCols = `id, title, body_md, category, sub_category, status, visibility,
	author_id, assignee_id, target_rank, reward_credits, reward_pay, created_at, updated_at`

func scanTicket(scanner interface{ Scan(...any) error }) (*model.Ticket, error) {
	var t model.Ticket
	err := scanner.Scan(&t.ID, &t.Title, &t.BodyMD, &t.Category, &t.SubCategory,
		&t.Status, &t.Visibility, &t.AuthorID, &t.AssigneeID, &t.TargetRank,
		&t.RewardCredits, &t.RewardPay, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TicketStore) Create(draft TicketDraft) (*model.Ticket, error) {
	id := model.NewID()
	now := time.Now().UTC()

	if draft.Visibility == "" {
		draft.Visibility = "hierarchical"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO tickets (id, title, body_md, category, sub_category, status, visibility,
		   author_id, assignee_id, target_rank, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, draft.Title, draft.BodyMD, draft.Category, draft.SubCategory, model.StatusOpen,
		draft.Visibility, draft.AuthorID, draft.AssigneeID, draft.TargetRank, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert ticket: %w", err)
	}

	for _, w := range draft.Watchers {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO ticket_watchers (ticket_id, user_id) VALUES (?, ?)`,
			id, w,
		); err != nil {
			return nil, fmt.Errorf("insert watcher: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the ticket with its watchers, comments, and approval log
// resolved, or nil when no such ticket exists.
func (s *TicketStore) GetByID(id model.ID) (*model.Ticket, error) {
	row := s.db.QueryRow(`SELECT `+ticketCols+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	if t.Watchers, err = s.watchers(id); err != nil {
		return nil, err
	}
	if t.Comments, err = s.comments(id); err != nil {
		return nil, err
	}
	if t.ApprovalLog, err = s.approvals(id); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TicketStore) watchers(id model.ID) ([]model.ID, error) {
	rows, err := s.db.Query(`SELECT user_id FROM ticket_watchers WHERE ticket_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("list watchers: %w", err)
	}
	defer rows.Close()

	watchers := []model.ID{}
	for rows.Next() {
		var w model.ID
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan watcher: %w", err)
		}
		watchers = append(watchers, w)
	}
	return watchers, rows.Err()
}

func (s *TicketStore) comments(id model.ID) ([]model.CommentEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, author_id, body, created_at FROM ticket_comments WHERE ticket_id = ? ORDER BY id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []model.CommentEntry{}
	for rows.Next() {
		var c model.CommentEntry
		if err := rows.Scan(&c.ID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *TicketStore) approvals(id model.ID) ([]model.ApprovalLogEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, approver_id, credits, pay, created_at FROM ticket_approvals WHERE ticket_id = ? ORDER BY id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	entries := []model.ApprovalLogEntry{}
	for rows.Next() {
		var e model.ApprovalLogEntry
		var approver sql.NullString
		if err := rows.Scan(&e.ID, &approver, &e.Credits, &e.Pay, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		e.ApproverID = idFromNull(approver)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Submit merges the patch into the ticket and moves it to awaiting_review.
func (s *TicketStore) Submit(id model.ID, patch TicketPatch) (*model.Ticket, error) {
	set := "status = ?, updated_at = ?"
	args := []any{model.StatusAwaitingReview, time.Now().UTC()}

	add := func(col string, v any) {
		set += ", " + col + " = ?"
		args = append(args, v)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.BodyMD != nil {
		add("body_md", *patch.BodyMD)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.SubCategory != nil {
		add("sub_category", *patch.SubCategory)
	}
	if patch.Visibility != nil {
		add("visibility", *patch.Visibility)
	}
	if patch.AssigneeID != nil {
		add("assignee_id", string(*patch.AssigneeID))
	}
	args = append(args, id)

	res, err := s.db.Exec(`UPDATE tickets SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("submit ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	return s.GetByID(id)
}

// Escalate re-opens the ticket for review at a higher target rank. The
// caller is responsible for only ever passing a rank at or above the
// current target.
func (s *TicketStore) Escalate(id model.ID, target rank.Rank) (*model.Ticket, error) {
	res, err := s.db.Exec(
		`UPDATE tickets SET status = ?, target_rank = ?, updated_at = ? WHERE id = ?`,
		model.StatusAwaitingReview, target, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("escalate ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	return s.GetByID(id)
}

// CloseWithReward finalizes the ticket: status closed, reward fields set,
// approval-log entry appended, all in one SQL transaction. The status guard
// makes a racing second close fail rather than pay twice.
func (s *TicketStore) CloseWithReward(id model.ID, credits int, pay float64, approverID *model.ID) (*model.Ticket, error) {
	now := time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE tickets SET status = ?, reward_credits = ?, reward_pay = ?, updated_at = ?
		 WHERE id = ? AND status != ?`,
		model.StatusClosed, credits, pay, now, id, model.StatusClosed,
	)
	if err != nil {
		return nil, fmt.Errorf("close ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("open ticket %s: %w", id, ErrNotFound)
	}

	_, err = tx.Exec(
		`INSERT INTO ticket_approvals (ticket_id, approver_id, credits, pay, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, nullID(approverID), credits, pay, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert approval: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

// AddComment appends a comment. Legal in any state, including closed.
func (s *TicketStore) AddComment(ticketID, authorID model.ID, body string) (*model.CommentEntry, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO ticket_comments (ticket_id, author_id, body, created_at) VALUES (?, ?, ?, ?)`,
		ticketID, authorID, body, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &model.CommentEntry{ID: id, AuthorID: authorID, Body: body, CreatedAt: now}, nil
}
