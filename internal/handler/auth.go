package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"fieldstock-api/internal/model"
	"fieldstock-api/internal/service"
	"fieldstock-api/pkg/apierror"
	"fieldstock-api/pkg/response"
)

// AuthHandler handles device session authentication.
type AuthHandler struct {
	tokenService *service.TokenService
	apiKey       string
}

// NewAuthHandler creates a new auth handler. The API key is the shared
// pairing secret devices present to obtain a session token.
func NewAuthHandler(tokenService *service.TokenService, apiKey string) *AuthHandler {
	return &AuthHandler{
		tokenService: tokenService,
		apiKey:       apiKey,
	}
}

// TokenRequest represents the request body for token generation.
type TokenRequest struct {
	Key      string `json:"key"`
	Device   string `json:"device"`
	KeyLabel string `json:"key_label,omitempty"`
}

// TokenResponse represents the response for token generation.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GenerateToken handles POST /auth/token
func (h *AuthHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Key == "" {
		response.Error(w, apierror.BadRequest("key is required"))
		return
	}
	if req.Device == "" {
		response.Error(w, apierror.BadRequest("device is required"))
		return
	}
	if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(req.Key), []byte(h.apiKey)) != 1 {
		response.Error(w, apierror.Unauthorized("invalid api key"))
		return
	}

	tokenData := model.TokenData{
		Device:   req.Device,
		KeyLabel: req.KeyLabel,
	}

	token, err := h.tokenService.GenerateToken(r.Context(), tokenData)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to generate token"))
		return
	}

	response.OK(w, TokenResponse{
		Token:     token,
		ExpiresIn: int(service.TokenTTL.Seconds()),
	})
}

// RevokeToken handles POST /auth/revoke
func (h *AuthHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Token")
	if token == "" {
		response.Error(w, apierror.BadRequest("X-Token header required"))
		return
	}

	if err := h.tokenService.RevokeToken(r.Context(), token); err != nil {
		response.Error(w, apierror.InternalError("failed to revoke token"))
		return
	}

	response.OK(w, map[string]string{"status": "revoked"})
}

// RefreshToken handles POST /auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Token")
	if token == "" {
		response.Error(w, apierror.BadRequest("X-Token header required"))
		return
	}

	if err := h.tokenService.RefreshToken(r.Context(), token); err != nil {
		response.Error(w, apierror.Unauthorized(err.Error()))
		return
	}

	response.OK(w, map[string]interface{}{
		"status":     "refreshed",
		"expires_in": int(service.TokenTTL.Seconds()),
	})
}
