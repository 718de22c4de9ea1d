package handler

import (
	"net/http"

	"github.com/veydran/directorate/internal/model"
	"github.com/veydran/directorate/internal/store"
)

type TransactionHandler struct {
	ledger *store.LedgerStore
}

func NewTransactionHandler(ledger *store.LedgerStore) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// List returns a user's transactions, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := model.ParseID(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	txns, err := h.ledger.ListByUser(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}
