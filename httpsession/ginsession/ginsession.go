// Package ginsession adapts httpsession to gin.
package ginsession

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unkn0wn-root/sessioncache/httpsession"
)

const contextKey = "httpsession"

// Middleware loads the session before the handler chain and commits it after.
func Middleware(m *httpsession.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Start(c.Writer, c.Request)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Set(contextKey, s)
		c.Request = c.Request.WithContext(httpsession.NewContext(c.Request.Context(), s))

		c.Next()

		if err := m.Commit(c.Request.Context(), s); err != nil {
			_ = c.Error(err)
		}
	}
}

// Get returns the session for c, or nil when Middleware is not installed.
func Get(c *gin.Context) *httpsession.Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*httpsession.Session)
	return s
}
