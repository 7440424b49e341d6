package messaging

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TOPBARD/Connect-Hub/logger"
	midsec "github.com/TOPBARD/Connect-Hub/middleware/security"
	"github.com/TOPBARD/Connect-Hub/service/gateway"
	storage "github.com/TOPBARD/Connect-Hub/service/storage"
	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

// Handler exposes the messaging REST surface. All errors leave the boundary
// as {"error": string} JSON.
type Handler struct {
	svc *Service
	gw  *gateway.Server
}

func NewHandler(svc *Service, gw *gateway.Server) *Handler {
	return &Handler{svc: svc, gw: gw}
}

type sendMessageRequest struct {
	Text string `json:"text"`
	Img  string `json:"img"`
}

type mockConversationRequest struct {
	IsMock bool `json:"isMock"`
}

// GetConversations handles GET /api/messages/conversations.
func (h *Handler) GetConversations(c *gin.Context) {
	conversations, err := h.svc.GetConversations(reqCtx(c), midsec.UserID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// GetMessages handles GET /api/messages/:participantId.
func (h *Handler) GetMessages(c *gin.Context) {
	data, err := h.svc.GetMessages(reqCtx(c), midsec.UserID(c), c.Param("participantId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// SendMessage handles POST /api/messages/:participantId.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, errs.ErrArgs.WrapMsg("malformed body"))
		return
	}
	msg, err := h.svc.SendMessage(reqCtx(c), midsec.UserID(c), c.Param("participantId"), req.Text, req.Img)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// CreateMockConversation handles POST /api/messages/mock/:participantId.
func (h *Handler) CreateMockConversation(c *gin.Context) {
	var req mockConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, errs.ErrArgs.WrapMsg("malformed body"))
		return
	}
	// isMock=false means the SPA only wants the existing conversation; both
	// paths go through the same resolve-or-create.
	conv, err := h.svc.CreateMockConversation(reqCtx(c), midsec.UserID(c), c.Param("participantId"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// GetPresence handles GET /api/presence/:userId. The local registry answers
// for this node; the redis mirror covers users attached elsewhere.
func (h *Handler) GetPresence(c *gin.Context) {
	userID := c.Param("userId")
	if _, ok := h.gw.Registry().Lookup(userID); ok {
		c.JSON(http.StatusOK, gin.H{"userId": userID, "online": true})
		return
	}
	_, online, err := storage.PresenceLookup(reqCtx(c), userID)
	if err != nil {
		logger.Warnf("[messaging] presence mirror lookup failed user=%s err=%v", userID, err)
		online = false
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "online": online})
}

// Request-level timeouts are left to the transport layer; handlers ride the
// request context as-is.
func reqCtx(c *gin.Context) context.Context {
	return c.Request.Context()
}

func respondErr(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("[messaging] %s %s failed: %+v", c.Request.Method, c.FullPath(), err)
	} else {
		logger.Debugf("[messaging] %s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": errs.Message(err)})
}
