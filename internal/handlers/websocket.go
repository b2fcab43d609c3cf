package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rentora/rentals-backend/internal/services"
)

// WebSocketHandler upgrades the connection and registers the user with
// the hub for live booking notifications
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		role := c.GetString("role")

		services.HandleWebSocket(hub, c.Writer, c.Request, userId, role)
	}
}
