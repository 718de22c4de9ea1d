package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/veydran/directorate/internal/metrics"
)

// Message is the JSON envelope delivered to every connected subscriber.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// CreditsUpdatePayload announces a user's new credit total after any ledger
// mutation.
type CreditsUpdatePayload struct {
	UserID     string `json:"user_id"`
	NewCredits int    `json:"new_credits"`
}

// RewardGrantedPayload announces a finalized ticket reward.
type RewardGrantedPayload struct {
	UserID   string  `json:"user_id"`
	Credits  int     `json:"credits"`
	Pay      float64 `json:"pay"`
	TicketID string  `json:"ticket_id"`
}

// NotifyPayload announces a newly created notification.
type NotifyPayload struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func CreditsUpdate(userID string, newCredits int) Message {
	return Message{Event: "credits_update", Payload: CreditsUpdatePayload{UserID: userID, NewCredits: newCredits}}
}

func RewardGranted(userID string, credits int, pay float64, ticketID string) Message {
	return Message{Event: "reward_granted", Payload: RewardGrantedPayload{UserID: userID, Credits: credits, Pay: pay, TicketID: ticketID}}
}

func Notify(userID, message string) Message {
	return Message{Event: "notify", Payload: NotifyPayload{UserID: userID, Message: message}}
}

const queueSize = 256

// Hub maintains the set of live subscribers and fans events out to them.
// Publishers enqueue onto an outbound queue; a single dispatcher goroutine
// (Run) drains it, so a request never waits on subscriber delivery.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	queue   chan Message
	logger  *slog.Logger
}

// NewHub creates a new Hub. Call Run to start dispatching.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		queue:   make(chan Message, queueSize),
		logger:  logger,
	}
}

// Publish enqueues msg for delivery to all connected subscribers. It never
// blocks: when the queue is full the message is dropped and counted.
func (h *Hub) Publish(msg Message) {
	select {
	case h.queue <- msg:
		metrics.EventsPublished.WithLabelValues(msg.Event).Inc()
	default:
		h.logger.Warn("outbound queue full, dropping event", "event", msg.Event)
		metrics.EventsDropped.Inc()
	}
}

// Run drains the outbound queue and fans each message out. It returns when
// ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case msg := <-h.queue:
			h.broadcast(msg)
		case <-ctx.Done():
			return
		}
	}
}

// Register adds a subscriber to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.Subscribers.Inc()
}

// Unregister removes a subscriber and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.Subscribers.Dec()
	}
	h.mu.Unlock()
}

// broadcast delivers msg to every registered subscriber. Delivery is
// independent per subscriber: a full buffer drops the message for that
// subscriber only, and never blocks the dispatcher.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal event", "event", msg.Event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Subscriber buffer full — skip it rather than stall the rest.
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
