package ml

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var (
	toyLabels = []string{"joy", "sadness"}

	// Two cleanly separable emotion clusters.
	toyDocs = [][]string{
		{"happy", "great", "wonderful"},
		{"happy", "fun", "great"},
		{"wonderful", "fun", "happy"},
		{"sad", "terrible", "awful"},
		{"sad", "awful", "crying"},
		{"terrible", "crying", "sad"},
	}
	toyY = []int{0, 0, 0, 1, 1, 1}
)

func toyMatrix(t *testing.T) (*Vectorizer, *mat.Dense) {
	t.Helper()
	v := NewVectorizer(1, 0)
	m, err := v.FitTransform(toyDocs)
	require.NoError(t, err)
	return v, m
}

func TestNaiveBayesFitPredict(t *testing.T) {
	_, m := toyMatrix(t)

	nb := NewNaiveBayes(toyLabels)
	require.NoError(t, nb.Fit(m, toyY))

	pred := nb.Predict(m)
	assert.Len(t, pred, len(toyY))
	assert.Equal(t, toyY, pred)
}

func TestNaiveBayesFitMismatch(t *testing.T) {
	_, m := toyMatrix(t)
	nb := NewNaiveBayes(toyLabels)
	assert.Error(t, nb.Fit(m, []int{0, 1}))
}

func TestNaiveBayesMissingClass(t *testing.T) {
	_, m := toyMatrix(t)
	nb := NewNaiveBayes([]string{"joy", "sadness", "anger"})
	assert.Error(t, nb.Fit(m, toyY))
}

func TestNaiveBayesRoundTrip(t *testing.T) {
	_, m := toyMatrix(t)

	nb := NewNaiveBayes(toyLabels)
	require.NoError(t, nb.Fit(m, toyY))

	b, err := json.Marshal(nb)
	require.NoError(t, err)

	var nb2 NaiveBayes
	require.NoError(t, json.Unmarshal(b, &nb2))
	assert.Equal(t, nb.Predict(m), nb2.Predict(m))
}

func TestLinearSVMFitPredict(t *testing.T) {
	_, m := toyMatrix(t)

	svm := NewLinearSVM(toyLabels, 20, 42)
	require.NoError(t, svm.Fit(m, toyY))

	pred := svm.Predict(m)
	assert.Len(t, pred, len(toyY))
	assert.Equal(t, toyY, pred)
}

func TestLinearSVMDeterministic(t *testing.T) {
	_, m := toyMatrix(t)

	a := NewLinearSVM(toyLabels, 10, 7)
	b := NewLinearSVM(toyLabels, 10, 7)
	require.NoError(t, a.Fit(m, toyY))
	require.NoError(t, b.Fit(m, toyY))

	assert.Equal(t, a.Weights, b.Weights)
}

func TestLinearSVMFitMismatch(t *testing.T) {
	_, m := toyMatrix(t)
	svm := NewLinearSVM(toyLabels, 5, 1)
	assert.Error(t, svm.Fit(m, []int{0}))
}

func TestClassifierInterface(t *testing.T) {
	models := []Classifier{
		NewNaiveBayes(toyLabels),
		NewLinearSVM(toyLabels, 5, 1),
	}
	assert.Equal(t, "naive-bayes", models[0].Name())
	assert.Equal(t, "linear-svm", models[1].Name())
}
