package handler

import (
	"time"

	"github.com/agencyos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TokenIssuer signs bearer tokens
type TokenIssuer interface {
	Issue(subject, name string, ttl time.Duration) (string, time.Time, error)
}

// AuthHandler issues bearer tokens. It is mounted only outside production,
// where no identity provider fronts the API.
type AuthHandler struct {
	BaseHandler
	tokens TokenIssuer
	ttl    time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(tokens TokenIssuer, ttl time.Duration) *AuthHandler {
	return &AuthHandler{tokens: tokens, ttl: ttl}
}

// Token issues a token for the requested subject
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if !h.bind(c, &req) {
		return
	}
	token, expires, err := h.tokens.Issue(req.Subject, req.Name, h.ttl)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.TokenResponse{Token: token, ExpiresAt: expires.UTC().Format(time.RFC3339)})
}
