package middleware

import (
	"net/http"

	"github.com/ferrara94/CashCard-Microservice/internal/auth"

	"github.com/gin-gonic/gin"
)

// PrincipalKey is the gin context key the authenticated principal is stored
// under.
const PrincipalKey = "currentPrincipal"

// BasicAuth authenticates every request with HTTP Basic credentials against
// the fixed principal store and enforces the required role. Missing or bad
// credentials end the request with 401, a known principal without the role
// with 403. Bodies stay empty in both cases.
func BasicAuth(store *auth.Store, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="cashcards"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		principal, ok := store.Verify(username, password)
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="cashcards"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if principal.Role != requiredRole {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// CurrentPrincipal returns the principal set by BasicAuth, or nil when the
// request never passed the gate.
func CurrentPrincipal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, ok := v.(*auth.Principal)
	if !ok {
		return nil
	}
	return p
}
