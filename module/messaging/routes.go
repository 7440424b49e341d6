package messaging

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mid "github.com/TOPBARD/Connect-Hub/middleware"
	"github.com/TOPBARD/Connect-Hub/service/gateway"
)

// RegisterRoutes wires the messaging REST surface and the live channel onto
// the engine. The socket handshake authenticates via the userId query param
// (SPA contract); everything under /api requires the bearer credential.
func RegisterRoutes(r *gin.Engine, h *Handler, gw *gateway.Server) {
	auth := mid.RouteOpt{IsAuth: true}

	api := r.Group("/api")
	mid.GET(api, "/messages/conversations", h.GetConversations, auth)
	mid.GET(api, "/messages/:participantId", h.GetMessages, auth)
	mid.POST(api, "/messages/:participantId", h.SendMessage, auth)
	mid.POST(api, "/messages/mock/:participantId", h.CreateMockConversation, auth)
	mid.GET(api, "/presence/:userId", h.GetPresence, auth)

	r.GET("/ws", gw.HandleWS)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
}
