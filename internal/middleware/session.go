package middleware

import (
	"net/http"
	"time"

	"taskdesk/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	// SessionIDKey is the gin context key holding the caller's session id.
	SessionIDKey = "sessionID"
	// SessionCookie is the cookie carrying the signed session token.
	SessionCookie = "task_session"
)

// Session attaches a session id to every request. A missing, expired or
// tampered cookie starts a new session. A valid cookie past half of its
// lifetime is re-issued for the same session.
func Session(signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := ""
		if token, err := c.Cookie(SessionCookie); err == nil {
			if session, err := signer.Parse(token); err == nil {
				sid = session.ID
				if !session.NeedsRefresh(time.Now(), signer.TTL()) {
					c.Set(SessionIDKey, sid)
					c.Next()
					return
				}
			}
		}

		var token string
		var err error
		if sid == "" {
			sid, token, err = signer.NewSession()
		} else {
			token, err = signer.GenerateToken(sid)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, token, int(signer.TTL().Seconds()), "/", "", false, true)
		c.Set(SessionIDKey, sid)
		c.Next()
	}
}

// SessionID returns the session id set by Session, or "" outside it.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
