package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"notas/internal/auth"
	"notas/internal/storage"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if len(s.jwtSecret) == 0 {
		slog.ErrorContext(r.Context(), "JWT secret not configured")
		writeError(w, http.StatusInternalServerError, "server misconfigured")
		return
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hash error", "error", err)
		writeError(w, http.StatusInternalServerError, "could not register user")
		return
	}

	id, err := s.store.CreateUser(r.Context(), creds.Username, hash)
	if errors.Is(err, storage.ErrDuplicateUser) {
		writeError(w, http.StatusBadRequest, "username already taken")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Create user error", "error", err, "username", creds.Username)
		writeError(w, http.StatusInternalServerError, "could not register user")
		return
	}

	token, err := auth.GenerateToken(id, creds.Username, s.jwtSecret, s.tokenTTL)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token generation error", "error", err)
		writeError(w, http.StatusInternalServerError, "could not register user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if len(s.jwtSecret) == 0 {
		slog.ErrorContext(r.Context(), "JWT secret not configured")
		writeError(w, http.StatusInternalServerError, "server misconfigured")
		return
	}

	// Unknown user and wrong password answer identically so usernames
	// cannot be probed.
	user, err := s.store.UserByUsername(r.Context(), creds.Username)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "invalid credentials")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "User lookup error", "error", err)
		writeError(w, http.StatusInternalServerError, "could not log in")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, creds.Password) {
		writeError(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenTTL)
	if err != nil {
		slog.ErrorContext(r.Context(), "Token generation error", "error", err)
		writeError(w, http.StatusInternalServerError, "could not log in")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
