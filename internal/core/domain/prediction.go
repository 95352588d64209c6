package domain

// Prediction maps each configured model to the class label it produced
// for a single feature vector.
type Prediction map[ModelID]int
