package http

import (
	"log/slog"
	"net/http"

	"paisa/internal/core"
)

type monthResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type categoryTotalResponse struct {
	Category   string `json:"category"`
	Total      string `json:"total"`
	TotalPaise int64  `json:"total_paise"`
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	year, month, verr := pathYearMonth(r)
	if verr != nil {
		respondValidationError(w, verr)
		return
	}

	key := summaryCacheKey(year, month)
	totals, cached := s.summaryCache.Get(key)
	if cached {
		slog.DebugContext(r.Context(), "Summary cache hit", "year", year, "month", month)
	} else {
		var err error
		totals, err = s.store.CategorySummary(r.Context(), year, month)
		if err != nil {
			slog.ErrorContext(r.Context(), "Category summary failed",
				"year", year, "month", month, "error", err)
			respondError(w, http.StatusInternalServerError, "failed to compute summary")
			return
		}
		s.summaryCache.Set(key, totals)
	}

	out := make([]categoryTotalResponse, 0, len(totals))
	for _, ct := range totals {
		out = append(out, categoryTotalResponse{
			Category:   string(ct.Category),
			Total:      ct.Total.String(),
			TotalPaise: ct.Total.Paise,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func handleMetaCategories(w http.ResponseWriter, _ *http.Request) {
	categories := core.Categories()
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, string(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func handleMetaSources(w http.ResponseWriter, _ *http.Request) {
	sources := core.Sources()
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		out = append(out, string(src))
	}
	respondJSON(w, http.StatusOK, out)
}
