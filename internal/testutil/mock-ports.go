package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ml-prediction-service/internal/core/domain"
	ports "ml-prediction-service/internal/core/ports/output"
)

// MockClassifier is a mock of Classifier.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Predict(features []float64) (int, error) {
	args := m.Called(features)
	return args.Int(0), args.Error(1)
}

func (m *MockClassifier) NumFeatures() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockClassifier) Kind() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClassifier) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockClassifierLoader is a mock of ClassifierLoader.
type MockClassifierLoader struct {
	mock.Mock
}

func (m *MockClassifierLoader) Load(path string) (ports.Classifier, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.Classifier), args.Error(1)
}

func (m *MockClassifierLoader) Extensions() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

// MockArtifactStore is a mock of ArtifactStore.
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Path(id domain.ModelID) string {
	args := m.Called(id)
	return args.String(0)
}

func (m *MockArtifactStore) Exists(id domain.ModelID) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

// MockArtifactFetcher is a mock of ArtifactFetcher.
type MockArtifactFetcher struct {
	mock.Mock
}

func (m *MockArtifactFetcher) Fetch(ctx context.Context, id domain.ModelID, destPath string) error {
	args := m.Called(ctx, id, destPath)
	return args.Error(0)
}
