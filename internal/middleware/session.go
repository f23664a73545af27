package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"weddingbudget/internal/session"
)

const (
	sessionKey    = "sessionKey"
	sessionHeader = "X-Session-ID"
	sessionCookie = "sid"
	sessionMaxAge = 30 * 24 * 60 * 60
)

// SessionID scopes the undo slot to one browser session. The id comes from
// the X-Session-ID header or the sid cookie; a new one is issued otherwise.
// The stored key is prefixed with the user id, so Identity must run first.
func SessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(sessionHeader))
		if sid == "" {
			if v, err := c.Cookie(sessionCookie); err == nil {
				sid = strings.TrimSpace(v)
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sid, sessionMaxAge, "/", "", false, true)
		}
		c.Writer.Header().Set(sessionHeader, sid)

		c.Set(sessionKey, session.Key(c.GetString(userIDKey), sid))
		c.Next()
	}
}
