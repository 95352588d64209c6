package handlers

import (
	"ml-prediction-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	predictionSvc *services.PredictionService
	frontendPath  string
}

// New returns the HTTP handler set. frontendPath may point to a static HTML
// page served on GET / for browsers; an empty or missing path disables it.
func New(predictionSvc *services.PredictionService, frontendPath string) *Handler {
	return &Handler{
		predictionSvc: predictionSvc,
		frontendPath:  frontendPath,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	// Status
	r.GET("/", h.Root)
	r.GET("/healthz", h.Health)

	// Inference
	r.POST("/predict", h.Predict)
	r.GET("/models", h.ListModels)

	// Metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
