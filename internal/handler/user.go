package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/veydran/directorate/internal/metrics"
	"github.com/veydran/directorate/internal/model"
	"github.com/veydran/directorate/internal/rank"
	"github.com/veydran/directorate/internal/store"
	"github.com/veydran/directorate/internal/websocket"
)

type UserHandler struct {
	users  *store.UserStore
	ledger *store.LedgerStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewUserHandler(users *store.UserStore, ledger *store.LedgerStore, hub *websocket.Hub, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, ledger: ledger, hub: hub, logger: logger}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string  `json:"username"`
		Email     string  `json:"email"`
		Password  string  `json:"password"`
		Rank      string  `json:"rank"`
		ReportsTo *string `json:"reports_to"`
		Hidden    bool    `json:"hidden"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	userRank := rank.Rank(req.Rank)
	if req.Rank == "" {
		userRank = rank.Asset
	}
	if !rank.Valid(userRank) {
		writeError(w, http.StatusBadRequest, "unknown rank")
		return
	}

	var reportsTo *model.ID
	if req.ReportsTo != nil {
		id, err := model.ParseID(*req.ReportsTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid reports_to id")
			return
		}
		reportsTo = &id
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.users.Create(req.Username, req.Email, string(hash), userRank, reportsTo, req.Hidden)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Adjust applies a manual credits/pay delta through the ledger so the change
// is recorded like any other transaction.
func (h *UserHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Credits int     `json:"credits"`
		Pay     float64 `json:"pay"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, txn, err := h.ledger.ApplyDelta(id, req.Credits, req.Pay, model.TxManualAdj, nil, nil)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("adjust balance", "user_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to adjust balance")
		return
	}

	metrics.Transactions.WithLabelValues(model.TxManualAdj).Inc()
	h.hub.Publish(websocket.CreditsUpdate(user.ID.String(), user.Credits))

	writeJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"transaction": txn,
	})
}
