package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"querychat/internal/conversation"
	"querychat/internal/models"
	"querychat/internal/session"
	"querychat/internal/worker"
)

// Handler wires the chat routes to the conversation engine.
type Handler struct {
	engine *conversation.Engine
}

// NewHandler constructs a Handler instance.
func NewHandler(engine *conversation.Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes attaches all chat routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/channels", h.listChannels)
	api.PUT("/channels/active", h.setActiveChannel)
	api.GET("/channels/:id/messages", h.getMessages)
	api.POST("/messages", h.sendMessage)
}

func (h *Handler) listChannels(c *gin.Context) {
	store := h.engine.Store()
	c.JSON(http.StatusOK, gin.H{
		"channels": store.Channels(),
		"active":   store.Active(),
	})
}

type activeChannelRequest struct {
	ChannelID string `json:"channel_id"`
}

func (h *Handler) setActiveChannel(c *gin.Context) {
	var req activeChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ChannelID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel_id is required"})
		return
	}
	if err := h.engine.Store().SetActive(req.ChannelID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getMessages(c *gin.Context) {
	msgs, err := h.engine.Store().Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": nonNil(msgs)})
}

type sendMessageRequest struct {
	Content   string `json:"content"`
	ChannelID string `json:"channel_id"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	channelID := req.ChannelID
	if channelID == "" {
		channelID = h.engine.Store().Active()
	}
	msgs, err := h.engine.SendTo(c.Request.Context(), channelID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": nonNil(msgs)})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownChannel):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, worker.ErrQueueFull):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "channel is busy, please retry"})
	case errors.Is(err, worker.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is shutting down"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func nonNil(msgs []models.Message) []models.Message {
	if msgs == nil {
		return []models.Message{}
	}
	return msgs
}
