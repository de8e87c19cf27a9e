package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"careerkit/pkg/auth"
	"careerkit/pkg/utils"
)

const principalKey = "principal"

// RequireAuthentication verifies the bearer credential against the identity
// provider and stores the resulting Principal on the request context.
// Handlers read it back with PrincipalFromContext and pass it on explicitly;
// nothing downstream touches the gin context for identity.
func RequireAuthentication(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.HandleServiceError(c, utils.ErrTokenMalformed)
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			utils.HandleServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(principalKey, *principal)
		c.Next()
	}
}

func PrincipalFromContext(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}
