package identity

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/diagnosis-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const principalContextKey = "principal"

// Middleware rejects requests without a valid bearer token. On success the principal is
// available from the gin context, the request context and as "user_id".
func Middleware(verifier Verifier, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		p, err := verifier.Verify(c.Request.Context(), token)
		if err != nil || !p.IsSessionActive() {
			logger.Warn("Rejected bearer token",
				"path", c.Request.URL.Path,
				"remote_addr", c.ClientIP(),
				"error", err,
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired session"})
			return
		}

		c.Set(principalContextKey, p)
		c.Set("user_id", p.UserID)
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// PrincipalFromGin returns the principal stored by Middleware.
func PrincipalFromGin(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
