package store

import (
	"errors"
	"testing"

	"github.com/veydran/directorate/internal/model"
	"github.com/veydran/directorate/internal/rank"
)

func newDraft(author, assignee model.ID) TicketDraft {
	return TicketDraft{
		Title:       "Recover the shipment",
		BodyMD:      "Crates went missing at the docks.",
		Category:    "ops",
		SubCategory: "retrieval",
		AuthorID:    author,
		AssigneeID:  assignee,
		TargetRank:  rank.Asset,
		Watchers:    []model.ID{author},
	}
}

func TestTicketCreateRoundTrip(t *testing.T) {
	ts := NewTicketStore(setupTestDB(t))

	author := model.NewID()
	assignee := model.NewID()
	created, err := ts.Create(newDraft(author, assignee))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.Status != model.StatusOpen {
		t.Errorf("status = %q, want open", created.Status)
	}
	if created.Visibility != "hierarchical" {
		t.Errorf("visibility = %q, want hierarchical default", created.Visibility)
	}
	if created.RewardCredits != 0 || created.RewardPay != 0 {
		t.Errorf("reward fields set on create: %d / %v", created.RewardCredits, created.RewardPay)
	}

	got, err := ts.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected ticket, got nil")
	}
	if got.Title != created.Title || got.BodyMD != created.BodyMD {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.AuthorID != author || got.AssigneeID != assignee {
		t.Errorf("references mismatch: author %s assignee %s", got.AuthorID, got.AssigneeID)
	}
	if len(got.Watchers) != 1 || got.Watchers[0] != author {
		t.Errorf("watchers = %v", got.Watchers)
	}
	if len(got.Comments) != 0 || len(got.ApprovalLog) != 0 {
		t.Errorf("new ticket has history: %d comments, %d approvals", len(got.Comments), len(got.ApprovalLog))
	}
}

func TestTicketGetMissing(t *testing.T) {
	ts := NewTicketStore(setupTestDB(t))
	got, err := ts.GetByID(model.NewID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestTicketSubmitPartialMerge(t *testing.T) {
	ts := NewTicketStore(setupTestDB(t))
	created, err := ts.Create(newDraft(model.NewID(), model.NewID()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	body := "Updated briefing."
	newAssignee := model.NewID()
	got, err := ts.Submit(created.ID, TicketPatch{BodyMD: &body, AssigneeID: &newAssignee})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got.Status != model.StatusAwaitingReview {
		t.Errorf("status = %q, want awaiting_review", got.Status)
	}
	if got.BodyMD != body {
		t.Errorf("body_md = %q, want %q", got.BodyMD, body)
	}
	if got.AssigneeID != newAssignee {
		t.Errorf("assignee = %s, want %s", got.AssigneeID, newAssignee)
	}
	if got.Title != created.Title {
		t.Errorf("title changed on partial submit: %q", got.Title)
	}
}

func TestTicketSubmitMissing(t *testing.T) {
	ts := NewTicketStore(setupTestDB(t))
	_, err := ts.Submit(model.NewID(), TicketPatch{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestTicketEscalate(t *testing.T) {
	ts := NewTicketStore(setupTestDB(t))
	created, err := ts.Create(newDraft(model.NewID(), model.NewID()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := ts.Escalate(created.ID, rank.Shadow)
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if got.Status != model.StatusAwaitingReview {
		t.Errorf("status = %q, want awaiting_review", got.Status)
	}
	if got.TargetRank != rank.Shadow {
		t.Errorf("target_rank = %q, want shadow", got.TargetRank)
	}
}

func TestTicketCloseWithReward(t *testing.T) {
	ts := NewTicketStore(setupTestDB(t))
	created, err := ts.Create(newDraft(model.NewID(), model.NewID()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	approver := model.NewID()
	got, err := ts.CloseWithReward(created.ID, 75, 12.5, &approver)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if got.Status != model.StatusClosed {
		t.Errorf("status = %q, want closed", got.Status)
	}
	if got.RewardCredits != 75 || got.RewardPay != 12.5 {
		t.Errorf("reward = %d / %v, want 75 / 12.5", got.RewardCredits, got.RewardPay)
	}
	if len(got.ApprovalLog) != 1 {
		t.Fatalf("approval log = %d entries, want 1", len(got.ApprovalLog))
	}
	e := got.ApprovalLog[0]
	if e.ApproverID == nil || *e.ApproverID != approver {
		t.Errorf("approver = %v, want %s", e.ApproverID, approver)
	}
	if e.Credits != 75 || e.Pay != 12.5 {
		t.Errorf("entry amounts = %d / %v", e.Credits, e.Pay)
	}

	// The status guard refuses a second close.
	_, err = ts.CloseWithReward(created.ID, 10, 1.0, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("second close err = %v, want ErrNotFound", err)
	}
	got, _ = ts.GetByID(created.ID)
	if got.RewardCredits != 75 {
		t.Errorf("reward overwritten by second close: %d", got.RewardCredits)
	}
	if len(got.ApprovalLog) != 1 {
		t.Errorf("approval log grew on refused close: %d", len(got.ApprovalLog))
	}
}

func TestTicketCommentsAppendInOrder(t *testing.T) {
	ts := NewTicketStore(setupTestDB(t))
	created, err := ts.Create(newDraft(model.NewID(), model.NewID()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	author := model.NewID()
	for _, body := range []string{"first", "second", "third"} {
		if _, err := ts.AddComment(created.ID, author, body); err != nil {
			t.Fatalf("add comment: %v", err)
		}
	}

	got, err := ts.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Comments) != 3 {
		t.Fatalf("comments = %d, want 3", len(got.Comments))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got.Comments[i].Body != want {
			t.Errorf("comments[%d] = %q, want %q", i, got.Comments[i].Body, want)
		}
	}
}
