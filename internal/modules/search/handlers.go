package search

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/domain"
)

// Handler handles symbol search HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a search handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "search").Logger(),
	}
}

// HandleSearch looks up tradable symbols for a query
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	region := domain.RegionIndia
	if strings.EqualFold(r.URL.Query().Get("region"), string(domain.RegionUS)) {
		region = domain.RegionUS
	}

	matches, err := h.service.Find(query, region)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"results": matches})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
