package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/domain"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/service/session"
	"github.com/iamasit07/fazenda-financeiro/backend/pkg/httputil"
	"github.com/rs/zerolog"
)

const sessionContextKey = "session"

type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (*session.Session, error)
}

// AuthMiddleware resolves the bearer token to a session or aborts with 403.
// A missing header, a bad token and a superseded token all get the same
// response.
func AuthMiddleware(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			AbortInvalidSession(c)
			return
		}

		sess, err := validator.ValidateToken(c.Request.Context(), token)
		if errors.Is(err, domain.ErrNoSession) {
			AbortInvalidSession(c)
			return
		}
		if err != nil {
			AbortInternal(c, err)
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session stored by AuthMiddleware.
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}

func AbortInvalidSession(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domain.ErrNoSession.Error()})
}

// AbortInternal logs err and answers with a generic 500. Driver messages
// are not passed on to the client.
func AbortInternal(c *gin.Context, err error) {
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
