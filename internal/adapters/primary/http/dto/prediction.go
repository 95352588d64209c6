package dto

import "ml-prediction-service/internal/core/domain"

// PredictRequest carries one feature vector. A missing or null "data" field is rejected by binding.
type PredictRequest struct {
	Data []float64 `json:"data" binding:"required"`
}

// PredictResponse maps model identifier to predicted class label,
// e.g. {"decision_tree": 1, "logistic_regression": 0}.
type PredictResponse map[string]int

func ToPredictResponse(p domain.Prediction) PredictResponse {
	resp := make(PredictResponse, len(p))
	for id, label := range p {
		resp[string(id)] = label
	}
	return resp
}

type StatusResponse struct {
	Message      string `json:"message"`
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type ModelResponse struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Exists    bool   `json:"exists"`
	Loaded    bool   `json:"loaded"`
	Kind      string `json:"kind,omitempty"`
	NFeatures int    `json:"n_features,omitempty"`
	Error     string `json:"error,omitempty"`
}

type ListModelsResponse struct {
	Items        []ModelResponse `json:"items"`
	FeatureCount int             `json:"feature_count"`
}

func ToModelResponse(a domain.ModelArtifact) ModelResponse {
	return ModelResponse{
		ID:        string(a.ID),
		Path:      a.Path,
		Exists:    a.Exists,
		Loaded:    a.Loaded,
		Kind:      a.Kind,
		NFeatures: a.NFeatures,
		Error:     a.LoadErrMsg,
	}
}
