// Package ticket implements the ticket lifecycle: submission, the
// reward-approval state machine with rank escalation, and commenting.
package ticket

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/veydran/directorate/internal/metrics"
	"github.com/veydran/directorate/internal/model"
	"github.com/veydran/directorate/internal/rank"
	"github.com/veydran/directorate/internal/reward"
	"github.com/veydran/directorate/internal/store"
	"github.com/veydran/directorate/internal/websocket"
)

var (
	// ErrNotFound is returned when the ticket, or a user it references,
	// does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned for transitions the state machine does
	// not define, such as approving a closed ticket.
	ErrInvalidState = errors.New("invalid state transition")
)

// EventPublisher accepts events for asynchronous fan-out to subscribers.
// *websocket.Hub satisfies it.
type EventPublisher interface {
	Publish(msg websocket.Message)
}

type Service struct {
	tickets *store.TicketStore
	users   *store.UserStore
	ledger  *store.LedgerStore
	events  EventPublisher
	logger  *slog.Logger
}

func NewService(tickets *store.TicketStore, users *store.UserStore, ledger *store.LedgerStore, events EventPublisher, logger *slog.Logger) *Service {
	return &Service{tickets: tickets, users: users, ledger: ledger, events: events, logger: logger}
}

// Submit merges the caller's partial updates into the ticket and moves it to
// awaiting_review. Closed tickets take no further lifecycle transitions.
func (s *Service) Submit(id model.ID, patch store.TicketPatch) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	if t.Status == model.StatusClosed {
		return nil, fmt.Errorf("submit closed ticket %s: %w", id, ErrInvalidState)
	}
	return s.tickets.Submit(id, patch)
}

// Approve runs the escalation policy for a proposed reward and fires exactly
// one of the two approval transitions.
//
// Escalation advances the ticket's target rank and re-opens review; nothing
// is paid and no events fire. Finalization closes the ticket, records the
// approval, applies the reward through the ledger, and publishes
// reward_granted and credits_update after the mutations commit.
func (s *Service) Approve(id model.ID, credits int, pay float64, approverID *model.ID) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	if t.Status == model.StatusClosed {
		return nil, fmt.Errorf("approve closed ticket %s: %w", id, ErrInvalidState)
	}

	assignee, err := s.users.GetByID(t.AssigneeID)
	if err != nil {
		return nil, err
	}
	if assignee == nil {
		return nil, fmt.Errorf("assignee %s: %w", t.AssigneeID, ErrNotFound)
	}

	if reward.Decide(credits, pay, rank.BasePay(assignee.Rank)) == reward.Escalate {
		target := t.TargetRank
		if target == "" {
			target = assignee.Rank
		}
		next := rank.Next(target)

		updated, err := s.tickets.Escalate(id, next)
		if err != nil {
			return nil, err
		}

		metrics.Approvals.WithLabelValues("escalated").Inc()
		s.logger.Info("reward escalated",
			"ticket_id", id, "credits", credits, "pay", pay, "target_rank", next)
		return updated, nil
	}

	updated, err := s.tickets.CloseWithReward(id, credits, pay, approverID)
	if err != nil {
		// The status guard lost a race with another approver.
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("approve closed ticket %s: %w", id, ErrInvalidState)
		}
		return nil, err
	}

	user, _, err := s.ledger.ApplyDelta(t.AssigneeID, credits, pay, model.TxPayment, &id, approverID)
	if err != nil {
		return nil, err
	}

	metrics.Approvals.WithLabelValues("finalized").Inc()
	metrics.Transactions.WithLabelValues(model.TxPayment).Inc()

	s.events.Publish(websocket.RewardGranted(user.ID.String(), credits, pay, id.String()))
	s.events.Publish(websocket.CreditsUpdate(user.ID.String(), user.Credits))

	s.logger.Info("reward granted",
		"ticket_id", id, "user_id", user.ID, "credits", credits, "pay", pay)
	return updated, nil
}

// Comment appends a comment to the ticket. Legal in any state — closed
// tickets still take comments, just no reward transitions.
func (s *Service) Comment(id, authorID model.ID, body string) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}

	if _, err := s.tickets.AddComment(id, authorID, body); err != nil {
		return nil, err
	}
	return s.tickets.GetByID(id)
}
