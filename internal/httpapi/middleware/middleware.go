package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/suPer8Hu/chat-dashboard/internal/auth"
	"github.com/suPer8Hu/chat-dashboard/internal/common"
	"github.com/suPer8Hu/chat-dashboard/internal/models"
)

const (
	// CookieName carries the identity token in browsers.
	CookieName = "user"

	IdentityKey  = "identity"
	RequestIDKey = "requestID"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set(RequestIDKey, rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// Recovery turns a panic into a 500 envelope and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"component", "http",
					"request_id", c.GetString(RequestIDKey),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				common.Abort(c, http.StatusInternalServerError, common.CodeInternal, "internal error")
			}
		}()
		c.Next()
	}
}

// Identify parses the identity token from a Bearer header or the cookie and
// stores the identity on the context. The first token that verifies wins;
// when none does the request stays anonymous.
func Identify(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, tok := range tokensFrom(c) {
			if id, err := auth.ParseIdentity(tok, secret); err == nil {
				c.Set(IdentityKey, *id)
				break
			}
		}
		c.Next()
	}
}

// tokensFrom lists candidate tokens, header first.
func tokensFrom(c *gin.Context) []string {
	var out []string
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); tok != "" {
			out = append(out, tok)
		}
	}
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		out = append(out, v)
	}
	return out
}

// CurrentIdentity returns the caller's identity set by Identify.
func CurrentIdentity(c *gin.Context) (models.SanitizedUser, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return models.SanitizedUser{}, false
	}
	id, ok := v.(models.SanitizedUser)
	return id, ok
}

// AuthRequired rejects anonymous requests with 401.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			common.Abort(c, http.StatusUnauthorized, common.CodeUnauthorized, "authentication required")
			return
		}
		c.Next()
	}
}

// AdminRequired rejects anonymous requests with 401 and non-admins with 403.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			common.Abort(c, http.StatusUnauthorized, common.CodeUnauthorized, "authentication required")
			return
		}
		if !id.IsAdmin() {
			common.Abort(c, http.StatusForbidden, common.CodeForbidden, "admin privileges required")
			return
		}
		c.Next()
	}
}
