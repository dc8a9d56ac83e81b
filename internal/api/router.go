package api

import (
	"github.com/SIMPLYBOYS/campaign_monitor/internal/websocket"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes the Gin router and sets up the routes
func SetupRouter(h *Handler, wsManager *websocket.WebSocketManager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), ErrorMiddleware())

	r.GET("/campaigns", h.ListCampaigns)
	r.GET("/campaigns/:id/leaderboard", h.GetLeaderboard)
	r.GET("/campaigns/:id/receipt", h.GetReceipt)

	if wsManager != nil {
		r.GET("/ws", func(c *gin.Context) {
			wsManager.HandleWebSocket(c.Writer, c.Request)
		})
	}

	return r
}
