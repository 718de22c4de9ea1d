package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/veydran/directorate/internal/model"
	"github.com/veydran/directorate/internal/rank"
	"github.com/veydran/directorate/internal/store"
	"github.com/veydran/directorate/internal/ticket"
)

type TicketHandler struct {
	tickets *store.TicketStore
	users   *store.UserStore
	service *ticket.Service
	logger  *slog.Logger
}

func NewTicketHandler(tickets *store.TicketStore, users *store.UserStore, service *ticket.Service, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, users: users, service: service, logger: logger}
}

func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string   `json:"title"`
		BodyMD      string   `json:"body_md"`
		Category    string   `json:"category"`
		SubCategory string   `json:"sub_category"`
		Visibility  string   `json:"visibility"`
		AuthorID    string   `json:"author_id"`
		AssigneeID  string   `json:"assignee_id"`
		TargetRank  string   `json:"target_rank"`
		Watchers    []string `json:"watchers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	authorID, err := model.ParseID(req.AuthorID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid author_id")
		return
	}
	assigneeID, err := model.ParseID(req.AssigneeID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assignee_id")
		return
	}

	author, err := h.users.GetByID(authorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check author")
		return
	}
	if author == nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}
	assignee, err := h.users.GetByID(assigneeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check assignee")
		return
	}
	if assignee == nil {
		writeError(w, http.StatusNotFound, "assignee not found")
		return
	}

	// Reviews start at the assignee's own rank unless the author asks for a
	// specific sign-off level.
	targetRank := rank.Rank(req.TargetRank)
	if req.TargetRank == "" {
		targetRank = assignee.Rank
	}
	if !rank.Valid(targetRank) {
		writeError(w, http.StatusBadRequest, "unknown target_rank")
		return
	}

	watchers := make([]model.ID, 0, len(req.Watchers))
	for _, raw := range req.Watchers {
		id, err := model.ParseID(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid watcher id")
			return
		}
		watchers = append(watchers, id)
	}

	created, err := h.tickets.Create(store.TicketDraft{
		Title:       req.Title,
		BodyMD:      req.BodyMD,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Visibility:  req.Visibility,
		AuthorID:    authorID,
		AssigneeID:  assigneeID,
		TargetRank:  targetRank,
		Watchers:    watchers,
	})
	if err != nil {
		h.logger.Error("create ticket", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create ticket")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	t, err := h.tickets.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get ticket")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "ticket not found")
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (h *TicketHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		BodyMD      *string `json:"body_md"`
		Category    *string `json:"category"`
		SubCategory *string `json:"sub_category"`
		Visibility  *string `json:"visibility"`
		AssigneeID  *string `json:"assignee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	patch := store.TicketPatch{
		Title:       req.Title,
		BodyMD:      req.BodyMD,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Visibility:  req.Visibility,
	}
	if req.AssigneeID != nil {
		assigneeID, err := model.ParseID(*req.AssigneeID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid assignee_id")
			return
		}
		patch.AssigneeID = &assigneeID
	}

	updated, err := h.service.Submit(id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *TicketHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Credits    int     `json:"credits"`
		Pay        float64 `json:"pay"`
		ApproverID *string `json:"approver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var approverID *model.ID
	if req.ApproverID != nil {
		parsed, err := model.ParseID(*req.ApproverID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid approver_id")
			return
		}
		approverID = &parsed
	}

	updated, err := h.service.Approve(id, req.Credits, req.Pay, approverID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *TicketHandler) Comment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		AuthorID string `json:"author_id"`
		Body     string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if strings.TrimSpace(req.Body) == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}
	authorID, err := model.ParseID(req.AuthorID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid author_id")
		return
	}

	updated, err := h.service.Comment(id, authorID, req.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
