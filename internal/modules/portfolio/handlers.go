package portfolio

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/clients/broker"
	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/internal/modules/auth"
)

// BrokerGateway is the slice of the broker client the handlers need
type BrokerGateway interface {
	Configured() bool
	LoginURL(redirectURI string) (string, error)
	ExchangeToken(requestToken string) (string, error)
	FetchTradeBook(accessToken string) ([]broker.Trade, error)
}

// Handler handles portfolio and broker HTTP requests
type Handler struct {
	service *Service
	broker  BrokerGateway
	log     zerolog.Logger
}

// NewHandler creates a portfolio handler
func NewHandler(service *Service, gateway BrokerGateway, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		broker:  gateway,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

type addHoldingRequest struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
	BuyPrice float64 `json:"buy_price"`
	BuyDate  string  `json:"buy_date"`
}

// HandleAdd records a manual holding
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.UserEmail(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req addHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Ticker == "" {
		h.writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	buyDate, err := time.Parse(dateLayout, req.BuyDate)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "buy_date must be YYYY-MM-DD")
		return
	}

	holding, err := h.service.Add(email, domain.Holding{
		Ticker:   req.Ticker,
		Quantity: req.Quantity,
		BuyPrice: req.BuyPrice,
		BuyDate:  buyDate,
	})
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, holding)
}

// HandleList returns the user's holdings with live prices and P/L
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.UserEmail(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	holdings, err := h.service.Holdings(email)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"holdings": holdings})
}

// HandleDelete removes every holding of a ticker
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.UserEmail(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	ticker := chi.URLParam(r, "ticker")
	removed, err := h.service.Delete(email, ticker)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		h.writeError(w, http.StatusNotFound, "holding not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "ticker": ticker})
}

// HandleHistory returns the valuation time series for a display window
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.UserEmail(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	window := domain.Window(r.URL.Query().Get("period"))
	if window == "" {
		window = domain.Window6Months
	}
	if !validWindow(window) {
		h.writeError(w, http.StatusBadRequest, "invalid period")
		return
	}

	series, err := h.service.History(email, window)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, series)
}

// HandleBrokerLoginURL returns the broker OAuth login URL
func (h *Handler) HandleBrokerLoginURL(w http.ResponseWriter, r *http.Request) {
	if !h.broker.Configured() {
		h.writeError(w, http.StatusServiceUnavailable, "broker integration is not configured")
		return
	}

	redirectURI := r.URL.Query().Get("redirect_uri")
	url, err := h.broker.LoginURL(redirectURI)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"login_url": url})
}

type exchangeRequest struct {
	RequestToken string `json:"request_token"`
}

// HandleBrokerExchange trades a request token for an access token
func (h *Handler) HandleBrokerExchange(w http.ResponseWriter, r *http.Request) {
	if !h.broker.Configured() {
		h.writeError(w, http.StatusServiceUnavailable, "broker integration is not configured")
		return
	}

	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RequestToken == "" {
		h.writeError(w, http.StatusBadRequest, "request_token is required")
		return
	}

	accessToken, err := h.broker.ExchangeToken(req.RequestToken)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

type syncRequest struct {
	AccessToken string `json:"access_token"`
}

// HandleBrokerSync imports the broker trade book, replacing prior
// broker-sourced holdings
func (h *Handler) HandleBrokerSync(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.UserEmail(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if !h.broker.Configured() {
		h.writeError(w, http.StatusServiceUnavailable, "broker integration is not configured")
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		h.writeError(w, http.StatusBadRequest, "access_token is required")
		return
	}

	trades, err := h.broker.FetchTradeBook(req.AccessToken)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	added, err := h.service.SyncBroker(email, trades)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "synced", "imported": added})
}

func validWindow(w domain.Window) bool {
	switch w {
	case domain.Window1Month, domain.Window3Months, domain.Window6Months,
		domain.Window1Year, domain.WindowYTD, domain.WindowAll:
		return true
	}
	return false
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
