package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName holds the signed session token.
	CookieName = "plume_session"

	viewerKey = "auth.viewer"
)

// ResolveViewer reads the session cookie and, when it verifies, stores
// the viewer in the request context. Anonymous and broken-cookie
// requests pass through untouched.
func ResolveViewer(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
			if v, err := tokens.Parse(cookie); err == nil {
				c.Set(viewerKey, v)
			}
		}
		c.Next()
	}
}

// ViewerFrom returns the resolved viewer, if any.
func ViewerFrom(c *gin.Context) (Viewer, bool) {
	v, ok := c.Get(viewerKey)
	if !ok {
		return Viewer{}, false
	}
	viewer, ok := v.(Viewer)
	return viewer, ok
}

// RequireViewer gates protected routes: anonymous requests are redirected
// to the login page with a next parameter pointing back here. The core
// services behind this middleware always receive a real viewer id.
func RequireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ViewerFrom(c); !ok {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, "/auth/login/?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}
