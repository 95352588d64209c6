package native

import (
	"fmt"

	"ml-prediction-service/internal/core/domain"
)

const leaf = -1

// decisionTree evaluates a binary tree stored as parallel node arrays.
// Node i is a leaf when childrenLeft[i] == childrenRight[i] == -1; otherwise
// a row goes left when row[feature[i]] <= threshold[i].
type decisionTree struct {
	nFeatures     int
	classes       []int
	childrenLeft  []int
	childrenRight []int
	feature       []int
	threshold     []float64
	value         [][]float64
}

func newDecisionTree(doc *document) (*decisionTree, error) {
	n := len(doc.ChildrenLeft)
	if n == 0 {
		return nil, fmt.Errorf("%w: decision tree has no nodes", domain.ErrInvalidArtifact)
	}
	if len(doc.ChildrenRight) != n || len(doc.Feature) != n || len(doc.Threshold) != n || len(doc.Value) != n {
		return nil, fmt.Errorf("%w: decision tree node arrays differ in length", domain.ErrInvalidArtifact)
	}

	for i := 0; i < n; i++ {
		l, r := doc.ChildrenLeft[i], doc.ChildrenRight[i]
		if (l == leaf) != (r == leaf) {
			return nil, fmt.Errorf("%w: node %d has a single child", domain.ErrInvalidArtifact, i)
		}
		if l == leaf {
			if len(doc.Value[i]) != len(doc.Classes) {
				return nil, fmt.Errorf("%w: leaf %d has %d class values, want %d",
					domain.ErrInvalidArtifact, i, len(doc.Value[i]), len(doc.Classes))
			}
			continue
		}
		// Children must point forward so traversal always terminates.
		if l <= i || l >= n || r <= i || r >= n {
			return nil, fmt.Errorf("%w: node %d has out-of-range children (%d, %d)", domain.ErrInvalidArtifact, i, l, r)
		}
		if f := doc.Feature[i]; f < 0 || f >= doc.NFeatures {
			return nil, fmt.Errorf("%w: node %d splits on feature %d of %d", domain.ErrInvalidArtifact, i, f, doc.NFeatures)
		}
	}

	return &decisionTree{
		nFeatures:     doc.NFeatures,
		classes:       doc.Classes,
		childrenLeft:  doc.ChildrenLeft,
		childrenRight: doc.ChildrenRight,
		feature:       doc.Feature,
		threshold:     doc.Threshold,
		value:         doc.Value,
	}, nil
}

func (t *decisionTree) Predict(features []float64) (int, error) {
	if err := checkFeatures(features, t.nFeatures); err != nil {
		return 0, err
	}

	node := 0
	for t.childrenLeft[node] != leaf {
		if features[t.feature[node]] <= t.threshold[node] {
			node = t.childrenLeft[node]
		} else {
			node = t.childrenRight[node]
		}
	}

	return t.classes[argmax(t.value[node])], nil
}

func (t *decisionTree) NumFeatures() int { return t.nFeatures }

func (t *decisionTree) Kind() string { return KindDecisionTree }

func (t *decisionTree) Close() error { return nil }
