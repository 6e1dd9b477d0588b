package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"fintrack/internal/utils" // Session token helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// SessionCookie is the name of the HTTP-only cookie carrying the session token.
const SessionCookie = "fintrack_session"

// userIDKey is the context key handlers read the authenticated user from.
const userIDKey = "userID"

// SessionMiddleware resolves the current user from the session cookie (or a
// Bearer header for API clients). Requests without a valid session are
// redirected to the login page with the original path preserved; API paths
// get a 401 JSON body instead of a redirect.
func SessionMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			challenge(c)
			return
		}
		claims, err := utils.ParseToken(tokenStr, secret)
		if err != nil {
			challenge(c)
			return
		}
		c.Set(userIDKey, claims.UserID) // Store userID in context
		c.Next()
	}
}

// tokenFromRequest looks for the session token in the cookie first, then the
// Authorization header.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// challenge aborts an unauthenticated request: 401 for API routes, a login
// redirect carrying redirectTo for everything else.
func challenge(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Redirect(http.StatusFound, "/login?redirectTo="+url.QueryEscape(c.Request.URL.Path))
	c.Abort()
}

// CurrentUserID returns the authenticated user id placed by SessionMiddleware.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
