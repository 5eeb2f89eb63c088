package api

import (
	"encoding/json"
	"net/http"
	"net/mail"
)

// SignupRequest is the body for POST /v1/auth/signup.
type SignupRequest struct {
	Email      string `json:"email"`
	DeviceName string `json:"device_name,omitempty"`
}

// SignupResponse returns the new user and the plaintext API key (shown once).
type SignupResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	APIKey string `json:"api_key"`
}

// MeResponse describes the authenticated user.
type MeResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Premium bool   `json:"premium"`
}

// handleSignup registers a new user and issues their first API key.
// Re-signup with an existing email issues a fresh key for that user, so a
// second device can be attached without a separate key-management flow.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !s.config.AllowSignup {
		writeError(w, http.StatusForbidden, ErrCodeSignupDisabled, "signup is disabled on this server")
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid email address")
		return
	}

	user, err := s.store.GetUserByEmail(req.Email)
	if err != nil {
		logFor(r.Context()).Error("lookup user", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to look up user")
		return
	}
	if user == nil {
		user, err = s.store.CreateUser(req.Email)
		if err != nil {
			logFor(r.Context()).Error("create user", "err", err)
			writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to create user")
			return
		}
	}

	plaintext, _, err := s.store.GenerateAPIKey(user.ID, req.DeviceName, nil)
	if err != nil {
		logFor(r.Context()).Error("generate api key", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to issue api key")
		return
	}

	writeJSON(w, http.StatusCreated, SignupResponse{
		UserID: user.ID,
		Email:  user.Email,
		APIKey: plaintext,
	})
}

// handleMe returns the authenticated user's profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := authUserFrom(r.Context())
	writeJSON(w, http.StatusOK, MeResponse{
		UserID:  user.UserID,
		Email:   user.Email,
		Premium: user.Premium,
	})
}
