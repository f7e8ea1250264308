package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"querychat/internal/backend"
)

// AskHandler exposes a query service as POST /ask.
type AskHandler struct {
	service backend.QueryService
}

func NewAskHandler(service backend.QueryService) *AskHandler {
	return &AskHandler{service: service}
}

// RegisterRoutes attaches the ask route to the router.
func (h *AskHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/ask", h.ask)
}

type askRequest struct {
	Query string `json:"query"`
}

func (h *AskHandler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	resp, err := h.service.Ask(c.Request.Context(), req.Query)
	if err != nil {
		var be *backend.Error
		if errors.As(err, &be) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": be.Detail})
			return
		}
		log.Error().Err(err).Msg("ask failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":        resp.Query,
		"results_html": resp.ResultsHTML,
	})
}
