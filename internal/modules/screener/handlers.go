package screener

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/domain"
)

// Handler handles screening HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a screener handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "screener").Logger(),
	}
}

// HandleScreen runs the screening pipeline for a region and returns the
// diversity-capped picks
func (h *Handler) HandleScreen(w http.ResponseWriter, r *http.Request) {
	var region domain.Region
	switch strings.ToUpper(r.URL.Query().Get("region")) {
	case "", string(domain.RegionIndia):
		region = domain.RegionIndia
	case string(domain.RegionUS):
		region = domain.RegionUS
	default:
		h.writeError(w, http.StatusBadRequest, "region must be IN or US")
		return
	}

	picks, err := h.service.Scan(region)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"region": region,
		"picks":  picks,
	})
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
