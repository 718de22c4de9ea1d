package ticket

import (
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/veydran/directorate/internal/database"
	"github.com/veydran/directorate/internal/model"
	"github.com/veydran/directorate/internal/rank"
	"github.com/veydran/directorate/internal/store"
	"github.com/veydran/directorate/internal/websocket"
)

// capturingPublisher records published events instead of fanning them out.
type capturingPublisher struct {
	mu   sync.Mutex
	msgs []websocket.Message
}

func (p *capturingPublisher) Publish(msg websocket.Message) {
	p.mu.Lock()
	p.msgs = append(p.msgs, msg)
	p.mu.Unlock()
}

func (p *capturingPublisher) events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var names []string
	for _, m := range p.msgs {
		names = append(names, m.Event)
	}
	return names
}

type fixture struct {
	svc     *Service
	tickets *store.TicketStore
	users   *store.UserStore
	ledger  *store.LedgerStore
	pub     *capturingPublisher
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		tickets: store.NewTicketStore(db),
		users:   store.NewUserStore(db),
		ledger:  store.NewLedgerStore(db),
		pub:     &capturingPublisher{},
	}
	f.svc = NewService(f.tickets, f.users, f.ledger, f.pub, slog.Default())
	return f
}

func (f *fixture) createUser(t *testing.T, r rank.Rank) *model.User {
	t.Helper()
	u, err := f.users.Create("ghost", "ghost@directorate.example", "", r, nil, false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) createTicket(t *testing.T, assignee *model.User) *model.Ticket {
	t.Helper()
	tk, err := f.tickets.Create(store.TicketDraft{
		Title:      "Recover the shipment",
		BodyMD:     "Details follow.",
		Category:   "ops",
		AuthorID:   assignee.ID,
		AssigneeID: assignee.ID,
		TargetRank: assignee.Rank,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return tk
}

func TestApproveEscalates(t *testing.T) {
	f := setup(t)
	assignee := f.createUser(t, rank.Asset) // base pay 3.0
	tk := f.createTicket(t, assignee)

	// 10 > 5 * 3.0 — pay triggers escalation.
	updated, err := f.svc.Approve(tk.ID, 50, 10.0, nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if updated.Status != model.StatusAwaitingReview {
		t.Errorf("status = %q, want %q", updated.Status, model.StatusAwaitingReview)
	}
	if updated.TargetRank != rank.Shadow {
		t.Errorf("target_rank = %q, want %q", updated.TargetRank, rank.Shadow)
	}
	if updated.RewardCredits != 0 || updated.RewardPay != 0 {
		t.Errorf("reward fields set on escalation: %d / %v", updated.RewardCredits, updated.RewardPay)
	}
	if len(updated.ApprovalLog) != 0 {
		t.Errorf("approval log has %d entries, want 0", len(updated.ApprovalLog))
	}

	txns, err := f.ledger.ListByUser(assignee.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("transactions = %d, want 0", len(txns))
	}

	user, _ := f.users.GetByID(assignee.ID)
	if user.Credits != 0 || user.Balance != 0 {
		t.Errorf("balance mutated on escalation: %d credits, %v pay", user.Credits, user.Balance)
	}

	if got := f.pub.events(); len(got) != 0 {
		t.Errorf("events published on escalation: %v", got)
	}
}

func TestApproveFinalizes(t *testing.T) {
	f := setup(t)
	assignee := f.createUser(t, rank.Asset)
	tk := f.createTicket(t, assignee)

	// 5 <= 15 and 50 <= 100 — pays out directly.
	updated, err := f.svc.Approve(tk.ID, 50, 5.0, nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if updated.Status != model.StatusClosed {
		t.Errorf("status = %q, want %q", updated.Status, model.StatusClosed)
	}
	if updated.RewardCredits != 50 {
		t.Errorf("reward_credits = %d, want 50", updated.RewardCredits)
	}
	if updated.RewardPay != 5.0 {
		t.Errorf("reward_pay = %v, want 5.0", updated.RewardPay)
	}
	if len(updated.ApprovalLog) != 1 {
		t.Fatalf("approval log has %d entries, want 1", len(updated.ApprovalLog))
	}
	if e := updated.ApprovalLog[0]; e.Credits != 50 || e.Pay != 5.0 || e.ApproverID != nil {
		t.Errorf("approval entry = %+v", e)
	}

	txns, err := f.ledger.ListByUser(assignee.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txns))
	}
	txn := txns[0]
	if txn.Type != model.TxPayment {
		t.Errorf("transaction type = %q, want payment", txn.Type)
	}
	if txn.AmountCredits != 50 || txn.AmountPay != 5.0 {
		t.Errorf("transaction amounts = %d / %v", txn.AmountCredits, txn.AmountPay)
	}
	if txn.RelatedTicket == nil || *txn.RelatedTicket != tk.ID {
		t.Errorf("related_ticket = %v, want %s", txn.RelatedTicket, tk.ID)
	}

	user, _ := f.users.GetByID(assignee.ID)
	if user.Credits != 50 {
		t.Errorf("credits = %d, want 50", user.Credits)
	}
	if user.Balance != 5.0 {
		t.Errorf("balance = %v, want 5.0", user.Balance)
	}

	events := f.pub.events()
	if len(events) != 2 || events[0] != "reward_granted" || events[1] != "credits_update" {
		t.Errorf("events = %v, want [reward_granted credits_update]", events)
	}
}

func TestApproveClosedTicketRejected(t *testing.T) {
	f := setup(t)
	assignee := f.createUser(t, rank.Asset)
	tk := f.createTicket(t, assignee)

	if _, err := f.svc.Approve(tk.ID, 50, 5.0, nil); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	_, err := f.svc.Approve(tk.ID, 10, 1.0, nil)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second approve err = %v, want ErrInvalidState", err)
	}

	txns, _ := f.ledger.ListByUser(assignee.ID)
	if len(txns) != 1 {
		t.Errorf("transactions = %d, want 1 (no double payout)", len(txns))
	}
}

func TestApproveUnknownTicket(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Approve(model.NewID(), 10, 1.0, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestApproveUnresolvableAssignee(t *testing.T) {
	f := setup(t)
	author := f.createUser(t, rank.Asset)

	tk, err := f.tickets.Create(store.TicketDraft{
		Title:      "Orphaned",
		AuthorID:   author.ID,
		AssigneeID: model.NewID(), // never created
		TargetRank: rank.Asset,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	_, err = f.svc.Approve(tk.ID, 10, 1.0, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got, _ := f.tickets.GetByID(tk.ID); got.Status != model.StatusOpen {
		t.Errorf("status mutated to %q on failed approve", got.Status)
	}
}

func TestEscalatedTicketFinalizesAtHigherRank(t *testing.T) {
	f := setup(t)
	assignee := f.createUser(t, rank.Asset)
	tk := f.createTicket(t, assignee)

	if _, err := f.svc.Approve(tk.ID, 50, 10.0, nil); err != nil {
		t.Fatalf("escalating approve: %v", err)
	}

	// A higher-rank reviewer approves within policy.
	approver := f.createUser(t, rank.Shadow)
	updated, err := f.svc.Approve(tk.ID, 50, 5.0, &approver.ID)
	if err != nil {
		t.Fatalf("finalizing approve: %v", err)
	}
	if updated.Status != model.StatusClosed {
		t.Errorf("status = %q, want closed", updated.Status)
	}
	if len(updated.ApprovalLog) != 1 {
		t.Fatalf("approval log = %d entries, want 1", len(updated.ApprovalLog))
	}
	if e := updated.ApprovalLog[0]; e.ApproverID == nil || *e.ApproverID != approver.ID {
		t.Errorf("approver_id = %v, want %s", e.ApproverID, approver.ID)
	}
}

func TestEscalationCapsAtTopRank(t *testing.T) {
	f := setup(t)
	assignee := f.createUser(t, rank.Niki) // base pay 0 — any pay escalates
	tk := f.createTicket(t, assignee)

	updated, err := f.svc.Approve(tk.ID, 0, 0.01, nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.TargetRank != rank.Niki {
		t.Errorf("target_rank = %q, want %q (ceiling)", updated.TargetRank, rank.Niki)
	}
}

func TestSubmitMergesFields(t *testing.T) {
	f := setup(t)
	assignee := f.createUser(t, rank.Asset)
	tk := f.createTicket(t, assignee)

	title := "Recover the shipment, quietly"
	category := "wetwork"
	updated, err := f.svc.Submit(tk.ID, store.TicketPatch{Title: &title, Category: &category})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if updated.Status != model.StatusAwaitingReview {
		t.Errorf("status = %q, want awaiting_review", updated.Status)
	}
	if updated.Title != title {
		t.Errorf("title = %q, want %q", updated.Title, title)
	}
	if updated.Category != category {
		t.Errorf("category = %q, want %q", updated.Category, category)
	}
	// Untouched fields survive the merge.
	if updated.BodyMD != tk.BodyMD {
		t.Errorf("body_md changed: %q", updated.BodyMD)
	}
}

func TestSubmitClosedTicketRejected(t *testing.T) {
	f := setup(t)
	assignee := f.createUser(t, rank.Asset)
	tk := f.createTicket(t, assignee)

	if _, err := f.svc.Approve(tk.ID, 10, 1.0, nil); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err := f.svc.Submit(tk.ID, store.TicketPatch{})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestCommentAppendsWithoutStatusChange(t *testing.T) {
	f := setup(t)
	assignee := f.createUser(t, rank.Asset)
	tk := f.createTicket(t, assignee)

	updated, err := f.svc.Comment(tk.ID, assignee.ID, "On my way.")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if updated.Status != model.StatusOpen {
		t.Errorf("status = %q, want open", updated.Status)
	}
	if len(updated.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(updated.Comments))
	}
	if updated.Comments[0].Body != "On my way." {
		t.Errorf("comment body = %q", updated.Comments[0].Body)
	}

	// Comments stay legal after closure.
	if _, err := f.svc.Approve(tk.ID, 10, 1.0, nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	updated, err = f.svc.Comment(tk.ID, assignee.ID, "Done.")
	if err != nil {
		t.Fatalf("comment after close: %v", err)
	}
	if len(updated.Comments) != 2 {
		t.Errorf("comments = %d, want 2", len(updated.Comments))
	}
}

func TestCommentUnknownTicket(t *testing.T) {
	f := setup(t)
	author := f.createUser(t, rank.Asset)
	_, err := f.svc.Comment(model.NewID(), author.ID, "hello?")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
