// Package auth is the mock authentication collaborator: a static user list
// and a token that is openly fake. Hardening is out of scope.
package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type user struct {
	ID       string
	Username string
	Password string
}

var users = []user{
	{ID: "u1", Username: "user123", Password: "password"},
	{ID: "u2", Username: "user124", Password: "password"},
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
	Token   string `json:"token,omitempty"`
}

func login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, loginResponse{Message: "invalid request body"})
		return
	}
	if req.Username == "" {
		writeJSON(w, http.StatusBadRequest, loginResponse{Message: "Please enter username"})
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, loginResponse{Message: "Please enter password"})
		return
	}

	for _, u := range users {
		if u.Username == req.Username && u.Password == req.Password {
			writeJSON(w, http.StatusOK, loginResponse{
				Message: "Login Successful",
				UserID:  u.ID,
				Token:   "mock-token",
			})
			return
		}
	}

	writeJSON(w, http.StatusUnauthorized, loginResponse{Message: "Invalid Credentials"})
}

// NewRouter builds the auth service's router.
func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Post("/login", login)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
