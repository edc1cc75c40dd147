// Package webapi registers the REST handlers for identities, materials,
// printers and orders.
package webapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"forge-server-go/internal/domain/identity"
	httptransport "forge-server-go/internal/transport/http"
)

const principalKey = "webapi.principal"

// bearerToken extracts the raw credential from the Authorization header.
func bearerToken(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	if strings.HasPrefix(token, "Bearer ") {
		return token[len("Bearer "):]
	}
	return token
}

// Auth validates the bearer token against the session authority and
// stores the resulting principal in the request context.
func (s *Service) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httptransport.RespondError(c, http.StatusUnauthorized, "missing credential")
			c.Abort()
			return
		}
		principal, err := s.identities.Authorize(c.Request.Context(), token)
		if err != nil {
			httptransport.RespondDomainError(c, err)
			c.Abort()
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// AdminOnly requires an authenticated admin principal. It must run
// after Auth.
func (s *Service) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFrom(c)
		if !ok || !principal.IsAdmin() {
			httptransport.RespondError(c, http.StatusForbidden, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (identity.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return identity.Principal{}, false
	}
	principal, ok := v.(identity.Principal)
	return principal, ok
}
