package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Both fixture models take 4 features. For [1, 2, 3, 4] the tree predicts 1
// and the logistic regression predicts 0.
const (
	DecisionTreeFixture = `{
  "type": "decision_tree",
  "n_features": 4,
  "classes": [0, 1],
  "children_left": [1, -1, 3, -1, -1],
  "children_right": [2, -1, 4, -1, -1],
  "feature": [2, -2, 0, -2, -2],
  "threshold": [2.5, -2.0, 0.5, -2.0, -2.0],
  "value": [[12.0, 16.0], [10.0, 0.0], [2.0, 16.0], [0.0, 7.0], [2.0, 9.0]]
}`

	LogisticRegressionFixture = `{
  "type": "logistic_regression",
  "n_features": 4,
  "classes": [0, 1],
  "coef": [[0.5, -0.25, 0.75, -1.0]],
  "intercept": [-0.1]
}`
)

// WriteFixtureModels writes decision_tree.json and logistic_regression.json
// into a fresh temp dir and returns it.
func WriteFixtureModels(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	write("decision_tree.json", DecisionTreeFixture)
	write("logistic_regression.json", LogisticRegressionFixture)
	return dir
}
