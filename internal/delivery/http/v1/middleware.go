package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-api/internal/auth"
	"github.com/adanyl0v/task-api/internal/services"
)

const (
	userIDCtxKey    = "user_id"
	userEmailCtxKey = "user_email"
)

// HandleAuthMiddleware admits requests carrying a valid bearer token whose
// subject is a known user. Every rejection is the same 401.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Debug().Msg("authorization header required")
		abortUnauthorized(c, errNotAuthenticated.Error())
		return
	}

	const bearerScheme = "Bearer"
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, bearerScheme) || token == "" {
		h.logger.Debug().Msg("invalid authorization header")
		abortUnauthorized(c, errNotAuthenticated.Error())
		return
	}

	claims, err := h.tokens.Validate(token)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("reason", tokenRejectionReason(err)).
			Msg("rejected token")
		abortUnauthorized(c, errInvalidToken.Error())
		return
	}

	user, err := h.auth.Identify(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.logger.Warn().
				Str("subject", claims.Subject).
				Msg("token subject is not a known user")
			abortUnauthorized(c, errInvalidToken.Error())
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to identify user")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.Set(userIDCtxKey, user.ID)
	c.Set(userEmailCtxKey, user.Email)
	c.Next()
}

func tokenRejectionReason(err error) string {
	switch {
	case auth.IsTokenError(err, auth.TokenExpired):
		return "expired"
	case auth.IsTokenError(err, auth.TokenInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
