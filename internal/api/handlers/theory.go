package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/magda-composer/internal/services"
)

const (
	defaultOctaveLow  = 4
	defaultOctaveHigh = 5
)

type TheoryHandler struct {
	svc *services.GenerationService
}

func NewTheoryHandler(svc *services.GenerationService) *TheoryHandler {
	return &TheoryHandler{svc: svc}
}

type NormalizeRequest struct {
	Labels []string `json:"labels"`
}

// NormalizeChords canonicalizes raw chord labels
func (h *TheoryHandler) NormalizeChords(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.svc.NormalizeLabels(req.Labels)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chords": results})
}

// GetScale returns a scale with its tension policy.
// Query params octave_low and octave_high bound the returned pitches.
func (h *TheoryHandler) GetScale(c *gin.Context) {
	low, err := queryInt(c, "octave_low", defaultOctaveLow)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	high, err := queryInt(c, "octave_high", defaultOctaveHigh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := h.svc.Scale(c.Param("tonic"), c.Param("mode"), low, high)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}
