package server

import (
	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/bizledger/internal/auth/domain"
	obscontext "github.com/smallbiznis/bizledger/internal/observability/context"
)

const contextPrincipalKey = "principal"

// AuthRequired resolves the session token into a principal for downstream handlers.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextPrincipalKey, *principal)
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), principal.UserID, string(principal.Role)))
		c.Next()
	}
}

// Authorize enforces the role policy for object and action. It must run after AuthRequired.
func (s *Server) Authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authz.Authorize(principal.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func principalFromContext(c *gin.Context) (authdomain.Principal, bool) {
	value, ok := c.Get(contextPrincipalKey)
	if !ok {
		return authdomain.Principal{}, false
	}
	principal, ok := value.(authdomain.Principal)
	return principal, ok
}
