package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ml-prediction-service/internal/core/domain"
	"ml-prediction-service/internal/metrics"
)

type PredictionService struct {
	models    *ModelSet
	nFeatures int
}

// NewPredictionService fails when the loaded models disagree on input width.
func NewPredictionService(models *ModelSet) (*PredictionService, error) {
	n, err := models.FeatureCount()
	if err != nil {
		return nil, err
	}
	return &PredictionService{models: models, nFeatures: n}, nil
}

func (s *PredictionService) Ready() bool {
	return s.models.Ready()
}

func (s *PredictionService) FeatureCount() int {
	return s.nFeatures
}

func (s *PredictionService) Models() []domain.ModelArtifact {
	return s.models.Artifacts()
}

// Predict runs every configured model on a single feature row. Either every
// model yields a label or the whole call fails.
func (s *PredictionService) Predict(ctx context.Context, features []float64) (domain.Prediction, error) {
	if !s.models.Ready() {
		return nil, domain.ErrModelsNotLoaded
	}
	if err := s.validate(features); err != nil {
		return nil, err
	}

	results := s.models.Results()
	out := make(domain.Prediction, len(results))
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		label, err := r.Classifier.Predict(features)
		if err != nil {
			metrics.RecordPredictionError(string(r.ID))
			if errors.Is(err, domain.ErrFeatureCountMismatch) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInference, r.ID, err)
		}
		metrics.RecordPrediction(string(r.ID), label, time.Since(start).Seconds())
		out[r.ID] = label
	}
	return out, nil
}

func (s *PredictionService) validate(features []float64) error {
	if len(features) == 0 {
		return domain.ErrEmptyFeatures
	}
	if s.nFeatures > 0 && len(features) != s.nFeatures {
		return fmt.Errorf("%w: expected %d features, got %d", domain.ErrFeatureCountMismatch, s.nFeatures, len(features))
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d", domain.ErrNonFiniteFeature, i)
		}
	}
	return nil
}
