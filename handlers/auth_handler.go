package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/Fazilniyaz/cable-net-complete-backend/middleware"
	"github.com/Fazilniyaz/cable-net-complete-backend/repository"
)

// invalidCredentialsMessage is shared by the unknown-user and
// wrong-password paths so responses do not reveal which one failed.
const invalidCredentialsMessage = "invalid credentials"

type AuthHandler struct {
	Admins *repository.AdminRepository
}

func NewAuthHandler(admins *repository.AdminRepository) *AuthHandler {
	return &AuthHandler{Admins: admins}
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Username == "" || payload.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	admin, err := h.Admins.FindByUsername(r.Context(), payload.Username)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}
	if err != nil {
		log.Printf("Login lookup for %q: %v", payload.Username, err)
		writeError(w, http.StatusInternalServerError, "error logging in")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(payload.Password)) != nil {
		writeError(w, http.StatusUnauthorized, invalidCredentialsMessage)
		return
	}

	token, err := middleware.GenerateToken(admin)
	if err != nil {
		log.Printf("Login token for %q: %v", payload.Username, err)
		writeError(w, http.StatusInternalServerError, "error logging in")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"admin": admin.Profile(),
	})
}

// Verify echoes the claims the auth middleware attached; reaching it at
// all means the token was accepted.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authorization token required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       claims.ID,
		"username": claims.Username,
		"role":     claims.Role,
	})
}
