package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/magda-composer/internal/humanize"
	"github.com/Conceptual-Machines/magda-composer/internal/services"
)

type HumanizeHandler struct {
	svc *services.GenerationService
}

func NewHumanizeHandler(svc *services.GenerationService) *HumanizeHandler {
	return &HumanizeHandler{svc: svc}
}

// Humanize perturbs an event list with a template or preset
func (h *HumanizeHandler) Humanize(c *gin.Context) {
	var req services.HumanizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Humanize(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type CreatePresetRequest struct {
	Name    string           `json:"name" binding:"required"`
	Profile humanize.Profile `json:"profile"`
}

// CreatePreset stores a named humanization profile
func (h *HumanizeHandler) CreatePreset(c *gin.Context) {
	var req CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	preset, err := h.svc.CreatePreset(c.Request.Context(), req.Name, req.Profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, preset)
}

// ListPresets returns built-in templates and stored presets
func (h *HumanizeHandler) ListPresets(c *gin.Context) {
	presets, err := h.svc.ListPresets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

// GetPreset returns one template or preset by name
func (h *HumanizeHandler) GetPreset(c *gin.Context) {
	preset, err := h.svc.GetPreset(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preset)
}
