package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/veydran/directorate/internal/model"
	"github.com/veydran/directorate/internal/push"
	"github.com/veydran/directorate/internal/store"
	"github.com/veydran/directorate/internal/websocket"
)

type NotificationHandler struct {
	notifications *store.NotificationStore
	hub           *websocket.Hub
	push          *push.Service
	logger        *slog.Logger
}

// NewNotificationHandler wires notification CRUD to the broadcast hub and,
// when pushSvc is non-nil, to out-of-band web push delivery.
func NewNotificationHandler(notifications *store.NotificationStore, hub *websocket.Hub, pushSvc *push.Service, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub, push: pushSvc, logger: logger}
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string  `json:"user_id"`
		Message  string  `json:"message"`
		TicketID *string `json:"ticket_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	userID, err := model.ParseID(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	var ticketID *model.ID
	if req.TicketID != nil {
		parsed, err := model.ParseID(*req.TicketID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid ticket_id")
			return
		}
		ticketID = &parsed
	}

	n, err := h.notifications.Create(userID, req.Message, ticketID)
	if err != nil {
		h.logger.Error("create notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create notification")
		return
	}

	h.hub.Publish(websocket.Notify(n.UserID.String(), n.Message))

	if h.push != nil {
		// Push delivery is best-effort and must never hold up the request.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			h.push.NotifyUser(ctx, n.UserID, n)
		}()
	}

	writeJSON(w, http.StatusCreated, n)
}

// List returns a user's notifications, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := model.ParseID(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	list, err := h.notifications.ListByUser(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	n, err := h.notifications.MarkRead(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark read")
		return
	}
	if n == nil {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}

	writeJSON(w, http.StatusOK, n)
}
