package domain

// ModelID names a classifier and, by convention, its artifact file.
type ModelID string

const (
	ModelDecisionTree       ModelID = "decision_tree"
	ModelLogisticRegression ModelID = "logistic_regression"
)

// DefaultModels is the fixed set of classifiers the service loads at startup.
// Order is preserved in listings and logs.
var DefaultModels = []ModelID{ModelDecisionTree, ModelLogisticRegression}

func (id ModelID) String() string {
	return string(id)
}

// ModelArtifact describes one classifier artifact after the startup load attempt.
type ModelArtifact struct {
	ID         ModelID
	Path       string
	Exists     bool
	Loaded     bool
	Kind       string
	NFeatures  int
	LoadErrMsg string
}
