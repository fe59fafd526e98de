package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionContextKey = "session"
	sessionCookie     = "session_id"
	sessionHeader     = "X-Session-ID"
)

// SessionMiddleware identifies the buyer session that scopes the cart
// and checkout. A new session ID is minted and set as a cookie when the
// request carries none.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.GetHeader(sessionHeader)
		if session == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				session = cookie
			}
		}
		if session == "" {
			session = uuid.NewString()
			c.SetCookie(sessionCookie, session, int(30*24*3600), "/", "", false, true)
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// GetSessionFromContext returns the buyer session ID
func GetSessionFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return "", false
	}
	session, ok := v.(string)
	return session, ok
}

// RequireSession aborts requests that somehow lack a session
func RequireSession(c *gin.Context) (string, bool) {
	session, ok := GetSessionFromContext(c)
	if !ok || session == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing session"})
		return "", false
	}
	return session, true
}
