package discovery

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/internal/modules/auth"
)

// Handler handles discovery HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a discovery handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "discovery").Logger(),
	}
}

// HandleScan runs the discovery pass for a region
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.UserEmail(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	region, err := parseRegion(r.URL.Query().Get("region"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Run(email, region)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

func parseRegion(raw string) (domain.Region, error) {
	switch strings.ToUpper(raw) {
	case "", string(domain.RegionIndia):
		return domain.RegionIndia, nil
	case string(domain.RegionUS):
		return domain.RegionUS, nil
	}
	return "", errInvalidRegion
}

var errInvalidRegion = errors.New("region must be IN or US")

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
