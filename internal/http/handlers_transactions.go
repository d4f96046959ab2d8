package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"paisa/internal/core"
	"paisa/internal/storage"
)

// transactionResponse is the wire form of a stored transaction. The amount
// travels both as a decimal string and in paise.
type transactionResponse struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Amount       string    `json:"amount"`
	AmountPaise  int64     `json:"amount_paise"`
	Direction    string    `json:"direction"`
	Description  string    `json:"description"`
	MerchantName string    `json:"merchant_name"`
	Category     string    `json:"category"`
	Source       string    `json:"source"`
	SMSID        string    `json:"sms_id,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		Timestamp:    tx.Timestamp,
		Amount:       tx.Amount.String(),
		AmountPaise:  tx.Amount.Paise,
		Direction:    string(tx.Direction),
		Description:  tx.Description,
		MerchantName: tx.MerchantName,
		Category:     string(tx.Category),
		Source:       string(tx.Source),
		SMSID:        tx.SMSID,
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleListByMonth(w http.ResponseWriter, r *http.Request) {
	year, month, verr := pathYearMonth(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	txs, err := s.store.ListTransactionsByMonth(r.Context(), year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions by month failed",
			"year", year, "month", month, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.store.MonthsWithActivity(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List months failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list months")
		return
	}

	out := make([]monthResponse, 0, len(months))
	for _, ym := range months {
		out = append(out, monthResponse{Year: ym.Year, Month: ym.Month})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	tx, err := s.store.GetTransaction(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Get transaction failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load transaction")
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	tx, verr := req.toTransaction()
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), tx)
	if errors.Is(err, storage.ErrDuplicateSMSID) {
		respondError(w, http.StatusConflict, "a transaction for this sms id already exists")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	s.invalidateSummaries(created.Month())
	respondJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	existing, err := s.store.GetTransaction(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Get transaction failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load transaction")
		return
	}

	var req transactionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	tx, verr := req.toTransaction()
	if verr != nil {
		respondValidationError(w, verr)
		return
	}
	tx.ID = id
	// The original message is immutable; edits only touch the derived fields.
	tx.SMSBody = existing.SMSBody
	tx.SMSID = existing.SMSID

	updated, err := s.store.UpdateTransaction(r.Context(), tx)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Update transaction failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update transaction")
		return
	}

	s.invalidateSummaries(existing.Month(), updated.Month())
	respondJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	existing, err := s.store.GetTransaction(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Get transaction failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load transaction")
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete transaction failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.invalidateSummaries(existing.Month())
	w.WriteHeader(http.StatusNoContent)
}
