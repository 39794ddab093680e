package httpapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mahjong/internal/authn"
	"mahjong/internal/logx"
)

// corsMiddleware is permissive by default since the client is a browser
// game client, not a first-party app.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logx.Debug("http request", "method", c.Request.Method, "path", c.Request.URL.Path,
			"status", c.Writer.Status(), "latency", time.Since(start))
	}
}

// authMiddleware validates the bearer token and stashes the player id in
// gin's context under "player_id".
func authMiddleware(verifier *authn.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			unauthorized(c, "missing authorization token")
			c.Abort()
			return
		}

		playerID, err := verifier.Verify(token)
		if err != nil {
			unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set("player_id", playerID)
		c.Next()
	}
}
