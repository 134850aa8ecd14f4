package analyst

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Handler handles thesis generation HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates an analyst handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analyst").Logger(),
	}
}

type analyzeRequest struct {
	Ticker string `json:"ticker"`
}

// HandleAnalyze generates an investment thesis for a ticker
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Ticker = strings.TrimSpace(req.Ticker)
	if req.Ticker == "" {
		h.writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	if !h.service.Configured() {
		h.writeError(w, http.StatusServiceUnavailable, "reasoning service is not configured")
		return
	}

	thesis, err := h.service.Generate(req.Ticker)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, thesis)
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
