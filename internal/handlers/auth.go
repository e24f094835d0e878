package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/ongoingwms/internal/utils"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login checks the operator account and issues an access token.
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if r.admin.PasswordHash == "" {
		respondError(w, http.StatusServiceUnavailable, "Login is disabled")
		return
	}

	if loginReq.Username != r.admin.Username || !utils.CheckPasswordHash(loginReq.Password, r.admin.PasswordHash) {
		r.log.Warn("login rejected", zap.String("username", loginReq.Username))
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(loginReq.Username, "admin", r.secret, r.admin.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken": token,
		"expiresAt":   time.Now().Add(r.admin.TokenTTL).UTC(),
	})
}
