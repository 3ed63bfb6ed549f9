package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/avenahealth/clinical-intake/internal/adapters/search"
)

// VocabularySuggester defines the autocomplete operation used by the handler.
type VocabularySuggester interface {
	Suggest(ctx context.Context, prefix string, limit int) ([]search.VocabularySuggestion, error)
}

// VocabularyHandler handles clinical vocabulary autocomplete requests
type VocabularyHandler struct {
	suggester VocabularySuggester
}

// NewVocabularyHandler creates a new vocabulary handler
func NewVocabularyHandler(suggester VocabularySuggester) *VocabularyHandler {
	return &VocabularyHandler{suggester: suggester}
}

// Suggest handles GET /api/vocabulary/suggest?q=...&limit=...
func (h *VocabularyHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	prefix := query.Get("q")
	if prefix == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := 10
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	suggestions, err := h.suggester.Suggest(r.Context(), prefix, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to fetch suggestions")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
