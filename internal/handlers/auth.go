// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"certpress/internal/config"
	"certpress/internal/models"
	"certpress/internal/store"
	"certpress/internal/token"
)

// Auth groups the authentication HTTP handlers.
type Auth struct {
	users  *store.UserStore
	tokens *token.Manager
	cfg    *config.Config
}

// NewAuth creates the auth handler group.
func NewAuth(users *store.UserStore, tokens *token.Manager, cfg *config.Config) *Auth {
	return &Auth{users: users, tokens: tokens, cfg: cfg}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// Login verifies admin credentials and returns a bearer token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		return
	}

	user, err := a.users.FindByEmail(strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed.")
		return
	}
	if user == nil || !a.users.CheckPassword(user, creds.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	tok, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		slog.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

// Register creates an admin account for an allow-listed email and returns
// a bearer token. The allow-list is a UX guard, not a security boundary;
// the instance operator controls it through ADMIN_EMAILS.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		return
	}

	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "A valid email is required.")
		return
	}
	if len(creds.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters.")
		return
	}
	if !a.cfg.AdminAllowed(email) {
		writeError(w, http.StatusForbidden, "This email is not allowed to register.")
		return
	}

	name := strings.TrimSpace(creds.Name)
	if name == "" {
		name = email
	}

	user, err := a.users.Create(email, creds.Password, name, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "An account with this email already exists.")
			return
		}
		slog.Error("register failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed.")
		return
	}

	tok, err := a.tokens.Issue(user.ID, user.Email)
	if err != nil {
		slog.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": tok})
}
