package domain

import "errors"

// ============================================================================
// Model Loading Errors
// ============================================================================

var (
	ErrArtifactNotFound     = errors.New("model artifact not found")
	ErrUnsupportedArtifact  = errors.New("unsupported model artifact format")
	ErrInvalidArtifact      = errors.New("invalid model artifact")
	ErrFeatureCountConflict = errors.New("loaded models disagree on feature count")
)

// ============================================================================
// Prediction Errors
// ============================================================================

// Service unavailable
var (
	ErrModelsNotLoaded = errors.New("Models not loaded")
)

// Validation errors
var (
	ErrEmptyFeatures        = errors.New("feature vector must not be empty")
	ErrFeatureCountMismatch = errors.New("feature count mismatch")
	ErrNonFiniteFeature     = errors.New("feature values must be finite numbers")
)

// Inference errors
var (
	ErrInference = errors.New("inference failed")
)
