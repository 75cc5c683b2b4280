package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/wyr-platform/internal/auth"
	"github.com/suPer8Hu/wyr-platform/internal/common"
)

const (
	UserIDKey = "user_id"
	TokenKey  = "token"
)

// IdentityResolver maps a bearer token to a caller.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Identity, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// resolve sets the caller on the context. Store errors are logged and the
// caller is treated as anonymous.
func resolve(c *gin.Context, r IdentityResolver) bool {
	tok := bearerToken(c)
	if tok == "" {
		return false
	}
	id, err := r.Resolve(c.Request.Context(), tok)
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthenticated) {
			log.Printf("[auth] resolve failed request_id=%s err=%v", c.GetString(RequestIDKey), err)
		}
		return false
	}
	c.Set(UserIDKey, id.UserID)
	c.Set(TokenKey, tok)
	return true
}

// AuthOptional attaches the caller when a valid token is present and lets
// anonymous requests through.
func AuthOptional(r IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolve(c, r)
		c.Next()
	}
}

func AuthRequired(r IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !resolve(c, r) {
			common.AbortFail(c, http.StatusUnauthorized, 40101, "unauthorized")
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller, if any.
func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
