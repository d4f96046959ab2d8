package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"paisa/internal/sms"
)

// handleSMSSync runs a batch of raw messages through the extraction pipeline
// and reports what happened to each of them.
func (s *Server) handleSMSSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	verr := &ValidationError{}
	msgs := make([]sms.RawMessage, 0, len(req.Messages))
	for i, m := range req.Messages {
		if m.ID == "" {
			verr.add("messages", "message at index "+strconv.Itoa(i)+" has no id")
			continue
		}
		msgs = append(msgs, sms.RawMessage{ID: m.ID, Body: m.Body, ReceivedAt: m.ReceivedAt})
	}
	if !verr.ok() {
		respondValidationError(w, verr)
		return
	}

	report, err := s.ingest.ProcessBatch(r.Context(), msgs)
	if err != nil {
		slog.ErrorContext(r.Context(), "Batch ingest failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to process messages")
		return
	}

	// A batch can land transactions in any number of months.
	s.summaryCache.Purge()

	respondJSON(w, http.StatusOK, report)
}
