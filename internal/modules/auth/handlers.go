package auth

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates an auth handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "auth").Logger(),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleSignup registers a new user and logs them in
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exists, err := h.service.UserExists(req.Email)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if exists {
		h.writeError(w, http.StatusBadRequest, "email already registered")
		return
	}

	if _, err := h.service.CreateUser(req.Email, req.Password); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.issueToken(w, req.Email)
}

// HandleLogin verifies credentials and issues a token
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Authenticate(req.Email, req.Password)
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}

	h.issueToken(w, user.Email)
}

// HandleMe returns the authenticated user
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	email, ok := UserEmail(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

func (h *Handler) issueToken(w http.ResponseWriter, email string) {
	token, err := h.service.IssueToken(email)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
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
