package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/magda-composer/internal/services"
)

const midiContentType = "audio/midi"

type ExportHandler struct {
	svc *services.GenerationService
}

func NewExportHandler(svc *services.GenerationService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// ExportMIDI renders parts or a stored generation as a Standard MIDI File
func (h *ExportHandler) ExportMIDI(c *gin.Context) {
	var req services.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.svc.ExportMIDI(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := "composition.mid"
	if req.GenerationID != "" {
		filename = req.GenerationID + ".mid"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, midiContentType, data)
}
