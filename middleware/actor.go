package middleware

import (
	"net/http"
	"strings"

	"meetpoint/models"
	"meetpoint/services/identity"

	"github.com/gin-gonic/gin"
)

// ActorContextKey is where the resolved party is stored on the request.
const ActorContextKey = "actor"

// ActorMiddleware resolves the caller's bearer credential through the user
// directory and stores the resulting party on the context. Credential
// verification itself lives in the directory service.
func ActorMiddleware(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		party, err := resolver.ResolveParty(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Credential could not be resolved"})
			return
		}

		c.Set(ActorContextKey, party)
		c.Next()
	}
}

// ActorFrom retrieves the resolved party from the request context.
func ActorFrom(c *gin.Context) (models.Party, bool) {
	v, ok := c.Get(ActorContextKey)
	if !ok {
		return models.Party{}, false
	}
	party, ok := v.(models.Party)
	return party, ok
}
