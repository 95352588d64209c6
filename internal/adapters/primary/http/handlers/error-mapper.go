package handlers

import (
	"errors"
	"net/http"

	"ml-prediction-service/internal/adapters/primary/http/dto"
	"ml-prediction-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Bad request / validation errors
	case errors.Is(err, domain.ErrEmptyFeatures),
		errors.Is(err, domain.ErrFeatureCountMismatch),
		errors.Is(err, domain.ErrNonFiniteFeature):
		log.WithError(err).WithField("request_id", c.GetString("request_id")).Debug("rejected prediction request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: err.Error()})

	// Service unavailable errors (reported as 500)
	case errors.Is(err, domain.ErrModelsNotLoaded):
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: domain.ErrModelsNotLoaded.Error()})

	default:
		log.WithError(err).WithField("request_id", c.GetString("request_id")).Error("unhandled prediction error")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: "internal server error"})
	}
}
