package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/models"
	"github.com/Conceptual-Machines/magda-composer/internal/services"
)

type GenerationHandler struct {
	svc *services.GenerationService
}

func NewGenerationHandler(svc *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// Generate composes parts over a chord timeline
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := logger.WithContext(c)
	fields["blocks"] = len(req.Blocks)
	logger.Debug("Generation requested", fields)

	result, err := h.svc.Generate(c.Request.Context(), req, c.GetString("request_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"request_id": c.GetString("request_id"),
		"generation": result,
	})
}

// GetGeneration returns a stored generation run
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	result, err := h.svc.GetGeneration(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"generation": result})
}
