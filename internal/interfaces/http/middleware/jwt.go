package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/agencyos/backend/internal/application/records"
	"github.com/agencyos/backend/internal/infrastructure/auth"
	"github.com/agencyos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ClaimsKey is the gin context key holding *auth.Claims
	ClaimsKey = "auth_claims"

	bearerPrefix = "Bearer "
)

// Validator checks bearer tokens
type Validator interface {
	Validate(token string) (*auth.Claims, error)
}

// Auth guards mutating requests with a bearer token. Safe methods pass
// through, picking up the actor when a valid token is sent anyway.
func Auth(tokens Validator, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		safe := isSafeMethod(c.Request.Method)

		if header == "" {
			if safe {
				c.Next()
				return
			}
			abort(c, dto.ErrCodeUnauthorized, "Authorization header is required")
			return
		}

		if !strings.HasPrefix(header, bearerPrefix) {
			abort(c, dto.ErrCodeTokenInvalid, "Authorization header must use the Bearer scheme")
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			logger.Debug("token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err))
			if errors.Is(err, auth.ErrExpiredToken) {
				abort(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abort(c, dto.ErrCodeTokenInvalid, "Token is invalid")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(records.WithActor(c.Request.Context(), claims.Actor()))
		c.Next()
	}
}

// GetClaims returns the claims set by Auth
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
