package ports

// Classifier is a deserialized, read-only model handle.
// Implementations must be safe for concurrent Predict calls.
type Classifier interface {
	// Predict returns the class label for a single feature row.
	Predict(features []float64) (int, error)

	// NumFeatures reports the input dimensionality, or 0 when the artifact does not declare it.
	NumFeatures() int

	// Kind names the algorithm or runtime backing the classifier.
	Kind() string

	Close() error
}

// ClassifierLoader deserializes an artifact file into a Classifier.
type ClassifierLoader interface {
	Load(path string) (Classifier, error)

	// Extensions lists the file extensions (with leading dot) this loader understands.
	Extensions() []string
}
