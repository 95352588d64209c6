package handlers

import (
	"net/http"
	"os"

	"ml-prediction-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
)

const statusMessage = "ML Prediction API is running"

// Root reports liveness. Browsers asking for HTML get the frontend page when
// one is installed; everyone else gets the JSON status. Always 200.
func (h *Handler) Root(c *gin.Context) {
	if h.frontendPath != "" && c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		if info, err := os.Stat(h.frontendPath); err == nil && !info.IsDir() {
			c.File(h.frontendPath)
			return
		}
	}
	h.Health(c)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatusResponse{
		Message:      statusMessage,
		Status:       "healthy",
		ModelsLoaded: h.predictionSvc.Ready(),
	})
}
