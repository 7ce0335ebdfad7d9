package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SharedToken guards the public status API with the shared token
// printed into QR codes and status links. The token travels as a
// query parameter (`token` or `t`) because QR scanners only follow
// plain URLs.
func SharedToken(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = c.Query("t")
		}

		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":     false,
				"error":       "invalid token",
				"http_status": http.StatusUnauthorized,
			})
			return
		}

		c.Next()
	}
}
