package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"arena-chat-service/internal/session"
)

const identityKey = "identity"

// RequireAuth verifies the bearer token and stores the identity on the
// request context.
func RequireAuth(gate *session.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := gate.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": authErrorMessage(err)})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// Identity fetches the verified identity placed by RequireAuth.
func Identity(c *gin.Context) session.Identity {
	return c.MustGet(identityKey).(session.Identity)
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrMissingCredential):
		return "credential is required"
	case errors.Is(err, session.ErrExpiredCredential):
		return "credential expired"
	default:
		return "invalid credential"
	}
}
