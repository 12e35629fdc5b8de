package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAPIKey is the header write routes must present a configured key in.
const HeaderAPIKey = "x-api-key"

// RequireAPIKey gates write routes behind a static key set. An empty key
// set is a server misconfiguration, not a client error.
func RequireAPIKey(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server API keys are not configured."})
			c.Abort()
			return
		}

		presented := c.GetHeader(HeaderAPIKey)
		if presented == "" || !keyMatches(keys, presented) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing API key."})
			c.Abort()
			return
		}

		c.Next()
	}
}

// keyMatches checks every configured key so timing does not reveal which
// one, if any, prefix-matched.
func keyMatches(keys []string, presented string) bool {
	ok := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(presented)) == 1 {
			ok = true
		}
	}
	return ok
}
