// Package native loads classifiers exported as JSON or YAML parameter documents
// (tree arrays for decision trees, coefficients for linear models) and evaluates
// them in-process.
package native

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ml-prediction-service/internal/core/domain"
	ports "ml-prediction-service/internal/core/ports/output"
)

const (
	KindDecisionTree       = "decision_tree"
	KindLogisticRegression = "logistic_regression"
)

// document is the on-disk layout shared by every native artifact.
// Only the fields relevant to Type are read.
type document struct {
	Type      string `json:"type" yaml:"type"`
	NFeatures int    `json:"n_features" yaml:"n_features"`
	Classes   []int  `json:"classes" yaml:"classes"`

	// decision_tree
	ChildrenLeft  []int       `json:"children_left" yaml:"children_left"`
	ChildrenRight []int       `json:"children_right" yaml:"children_right"`
	Feature       []int       `json:"feature" yaml:"feature"`
	Threshold     []float64   `json:"threshold" yaml:"threshold"`
	Value         [][]float64 `json:"value" yaml:"value"`

	// logistic_regression
	Coef      [][]float64 `json:"coef" yaml:"coef"`
	Intercept []float64   `json:"intercept" yaml:"intercept"`
}

type loader struct{}

// NewLoader returns a ClassifierLoader for .json, .yaml and .yml artifacts.
func NewLoader() ports.ClassifierLoader {
	return &loader{}
}

func (l *loader) Extensions() []string {
	return []string{".json", ".yaml", ".yml"}
}

func (l *loader) Load(path string) (ports.Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	doc, err := decode(filepath.Ext(path), raw)
	if err != nil {
		return nil, err
	}

	return build(doc)
}

func decode(ext string, raw []byte) (*document, error) {
	var doc document
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode json: %v", domain.ErrInvalidArtifact, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %v", domain.ErrInvalidArtifact, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedArtifact, ext)
	}
	return &doc, nil
}

func build(doc *document) (ports.Classifier, error) {
	if doc.NFeatures <= 0 {
		return nil, fmt.Errorf("%w: n_features must be positive, got %d", domain.ErrInvalidArtifact, doc.NFeatures)
	}
	if len(doc.Classes) < 2 {
		return nil, fmt.Errorf("%w: at least two classes required, got %d", domain.ErrInvalidArtifact, len(doc.Classes))
	}

	switch doc.Type {
	case KindDecisionTree:
		return newDecisionTree(doc)
	case KindLogisticRegression:
		return newLogisticRegression(doc)
	default:
		return nil, fmt.Errorf("%w: model type %q", domain.ErrUnsupportedArtifact, doc.Type)
	}
}

func checkFeatures(features []float64, want int) error {
	if len(features) != want {
		return fmt.Errorf("%w: expected %d features, got %d", domain.ErrFeatureCountMismatch, want, len(features))
	}
	return nil
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
