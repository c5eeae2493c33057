package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
)

const userIDKey = "userID"

// currentUser reads the identity BearerAuth stored on the request context.
func currentUser(c *gin.Context) domain.UserID {
	v, ok := c.Get(userIDKey)
	if !ok {
		return ""
	}
	user, ok := v.(domain.UserID)
	if !ok {
		return ""
	}
	return user
}

// BearerAuth guards the REST surface with the same verifier the realtime
// handshake uses.
func BearerAuth(verifier core.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		hdr := c.GetHeader("Authorization")
		parts := strings.SplitN(hdr, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		user, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(userIDKey, user)
		c.Next()
	}
}
