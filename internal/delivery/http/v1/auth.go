package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-api/internal/services"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=255"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind login request")
		abort(c, newBindingError(errInvalidRequestBody.Error(), err))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), services.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.logger.Warn().
				Str("email", req.Email).
				Msg("rejected login")
			abortUnauthorized(c, services.ErrInvalidCredentials.Error())
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to login")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
	})
}
