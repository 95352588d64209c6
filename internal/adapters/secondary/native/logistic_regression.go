package native

import (
	"fmt"

	"ml-prediction-service/internal/core/domain"
)

// logisticRegression holds one coefficient row for binary problems and one row
// per class otherwise. The sigmoid/softmax is monotonic, so labels come straight
// from the linear decision scores.
type logisticRegression struct {
	nFeatures int
	classes   []int
	coef      [][]float64
	intercept []float64
}

func newLogisticRegression(doc *document) (*logisticRegression, error) {
	wantRows := len(doc.Classes)
	if wantRows == 2 {
		wantRows = 1
	}
	if len(doc.Coef) != wantRows {
		return nil, fmt.Errorf("%w: logistic regression with %d classes needs %d coefficient rows, got %d",
			domain.ErrInvalidArtifact, len(doc.Classes), wantRows, len(doc.Coef))
	}
	if len(doc.Intercept) != wantRows {
		return nil, fmt.Errorf("%w: expected %d intercepts, got %d", domain.ErrInvalidArtifact, wantRows, len(doc.Intercept))
	}
	for i, row := range doc.Coef {
		if len(row) != doc.NFeatures {
			return nil, fmt.Errorf("%w: coefficient row %d has %d weights, want %d",
				domain.ErrInvalidArtifact, i, len(row), doc.NFeatures)
		}
	}

	return &logisticRegression{
		nFeatures: doc.NFeatures,
		classes:   doc.Classes,
		coef:      doc.Coef,
		intercept: doc.Intercept,
	}, nil
}

func (m *logisticRegression) Predict(features []float64) (int, error) {
	if err := checkFeatures(features, m.nFeatures); err != nil {
		return 0, err
	}

	scores := make([]float64, len(m.coef))
	for i, row := range m.coef {
		z := m.intercept[i]
		for j, w := range row {
			z += w * features[j]
		}
		scores[i] = z
	}

	if len(scores) == 1 {
		if scores[0] > 0 {
			return m.classes[1], nil
		}
		return m.classes[0], nil
	}
	return m.classes[argmax(scores)], nil
}

func (m *logisticRegression) NumFeatures() int { return m.nFeatures }

func (m *logisticRegression) Kind() string { return KindLogisticRegression }

func (m *logisticRegression) Close() error { return nil }
