// Package ml implements the TF-IDF vectorizer, the two classifiers
// (multinomial Naive Bayes and a linear one-vs-rest SVM), and the
// evaluation metrics used to score them.
package ml

import "gonum.org/v1/gonum/mat"

// Classifier is implemented by both model types.
type Classifier interface {
	Name() string
	Fit(x mat.Matrix, y []int) error
	Predict(x mat.Matrix) []int
	Scores(x mat.Matrix) *mat.Dense
}
