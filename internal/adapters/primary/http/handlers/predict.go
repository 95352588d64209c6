package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ml-prediction-service/internal/adapters/primary/http/dto"
	"ml-prediction-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var errTrailingData = errors.New("unexpected data after JSON body")

func (h *Handler) Predict(c *gin.Context) {
	// Checked before binding so an unready service answers consistently for any body.
	if !h.predictionSvc.Ready() {
		mapDomainError(c, domain.ErrModelsNotLoaded)
		return
	}

	var req dto.PredictRequest
	if err := bindStrictJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Detail: err.Error()})
		return
	}

	prediction, err := h.predictionSvc.Predict(c.Request.Context(), req.Data)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPredictResponse(prediction))
}

func (h *Handler) ListModels(c *gin.Context) {
	artifacts := h.predictionSvc.Models()

	items := make([]dto.ModelResponse, 0, len(artifacts))
	for _, a := range artifacts {
		items = append(items, dto.ToModelResponse(a))
	}

	c.JSON(http.StatusOK, dto.ListModelsResponse{
		Items:        items,
		FeatureCount: h.predictionSvc.FeatureCount(),
	})
}

// bindStrictJSON binds like ShouldBindJSON but rejects a body that carries
// anything besides whitespace after the first JSON value.
func bindStrictJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindBodyWith(obj, binding.JSON); err != nil {
		return err
	}

	raw, _ := c.Get(gin.BodyBytesKey)
	body, _ := raw.([]byte)

	dec := json.NewDecoder(bytes.NewReader(body))
	var first json.RawMessage
	if err := dec.Decode(&first); err != nil {
		return err
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return errTrailingData
	}
	return nil
}
