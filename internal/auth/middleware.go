package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminKey is the gin context key carrying the verified admin id.
const AdminKey = "adminID"

// AdminAuth enforces bearer JWT tokens signed with HS256 and stores the
// verified admin id in the request context. Everything behind it trusts
// that id to scope queries.
func AdminAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}
		c.Set(AdminKey, claims.Subject)
		c.Next()
	}
}
