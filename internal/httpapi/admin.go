package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mahjong/internal/admin"
)

// mountDebug wires arl/statsviz's dashboard under /debug/statsviz and a
// JSON load snapshot under /admin/stats.
func (s *Server) mountDebug() {
	mux := http.NewServeMux()
	if err := admin.RegisterDebugEndpoints(mux); err != nil {
		panic(err)
	}
	s.engine.Any("/debug/statsviz/*any", gin.WrapH(mux))

	adminGroup := s.engine.Group("/api/v1/admin", authMiddleware(s.auth), requireAdmin())
	adminGroup.GET("/stats", func(c *gin.Context) {
		gameCount := 0
		if s.hub != nil {
			gameCount = len(s.hub.RoomNames())
		}
		success(c, admin.Collect(gameCount))
	})
}
