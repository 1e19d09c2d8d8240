package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/domain"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/service/session"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/transport/http/middleware"
	"github.com/iamasit07/fazenda-financeiro/backend/pkg/useragent"
	"github.com/rs/zerolog"
)

type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*session.LoginResult, error)
	Logout(ctx context.Context, sess *session.Session) error
}

type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type loginRequest struct {
	Login string `json:"login" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	ctx := c.Request.Context()
	res, err := h.Auth.Login(ctx, strings.TrimSpace(req.Login), req.Senha)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		client := useragent.FromRequest(c.Request)
		zerolog.Ctx(ctx).Info().
			Str("ip", client.IP).
			Str("device", client.Device).
			Msg("login failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrInvalidCredentials.Error()})
		return
	}
	if err != nil {
		middleware.AbortInternal(c, err)
		return
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", res.User.ID).Msg("login")
	c.JSON(http.StatusOK, res)
}

// Session returns the user behind the bearer token.
func (h *AuthHandler) Session(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		middleware.AbortInvalidSession(c)
		return
	}
	c.JSON(http.StatusOK, sess.User)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		middleware.AbortInvalidSession(c)
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), sess); err != nil {
		middleware.AbortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
