package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/services"
)

// respondError maps service errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", err, logger.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		})
		c.JSON(status, gin.H{
			"error":      "Internal server error",
			"request_id": c.GetString("request_id"),
		})
		return
	}

	c.JSON(status, gin.H{
		"error":      err.Error(),
		"request_id": c.GetString("request_id"),
	})
}
