package ml

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	EpochsDefault = 10
	LambdaDefault = 1e-4
)

// LinearSVM is a linear-kernel support vector classifier. Multi-class
// problems are handled one-vs-rest: one binary hinge-loss classifier per
// label, trained with Pegasos-style SGD under L2 regularization.
type LinearSVM struct {
	Epochs  int         `json:"epochs"`
	Lambda  float64     `json:"lambda"`
	Seed    int64       `json:"seed"`
	Labels  []string    `json:"labels"`
	Weights [][]float64 `json:"weights"` // per class, last element is the bias
}

func NewLinearSVM(labels []string, epochs int, seed int64) *LinearSVM {
	if epochs < 1 {
		epochs = EpochsDefault
	}
	return &LinearSVM{
		Epochs: epochs,
		Lambda: LambdaDefault,
		Seed:   seed,
		Labels: labels,
	}
}

func (svm *LinearSVM) Name() string {
	return "linear-svm"
}

// Fit trains one binary classifier per label. y holds class indices
// into Labels.
func (svm *LinearSVM) Fit(x mat.Matrix, y []int) error {
	rows, cols := x.Dims()
	if rows == 0 || rows != len(y) {
		return errors.Errorf("feature matrix rows (%d) must match labels (%d)", rows, len(y))
	}

	classes := len(svm.Labels)
	for _, c := range y {
		if c < 0 || c >= classes {
			return errors.Errorf("label index %d out of range", c)
		}
	}

	svm.Weights = make([][]float64, classes)
	for c := 0; c < classes; c++ {
		svm.Weights[c] = svm.fitBinary(x, y, c, rows, cols)
	}

	return nil
}

// fitBinary runs the SGD loop for a single one-vs-rest classifier.
// The sample order is reshuffled each epoch from a seeded source so
// training is reproducible.
func (svm *LinearSVM) fitBinary(x mat.Matrix, y []int, class, rows, cols int) []float64 {
	w := make([]float64, cols+1)
	rnd := rand.New(rand.NewSource(svm.Seed + int64(class)))

	t := 0
	for epoch := 0; epoch < svm.Epochs; epoch++ {
		for _, i := range rnd.Perm(rows) {
			t++
			eta := 1.0 / (svm.Lambda * float64(t))

			target := -1.0
			if y[i] == class {
				target = 1.0
			}

			margin := w[cols]
			for j := 0; j < cols; j++ {
				margin += w[j] * x.At(i, j)
			}
			margin *= target

			decay := 1 - eta*svm.Lambda
			for j := 0; j < cols; j++ {
				w[j] *= decay
			}
			if margin < 1 {
				for j := 0; j < cols; j++ {
					w[j] += eta * target * x.At(i, j)
				}
				w[cols] += eta * target
			}
		}
	}

	return w
}

// Scores returns the decision margin of each class for each row.
func (svm *LinearSVM) Scores(x mat.Matrix) *mat.Dense {
	rows, cols := x.Dims()
	classes := len(svm.Labels)

	s := mat.NewDense(rows, classes, nil)
	for i := 0; i < rows; i++ {
		for c := 0; c < classes; c++ {
			w := svm.Weights[c]
			margin := w[cols]
			for j := 0; j < cols; j++ {
				margin += w[j] * x.At(i, j)
			}
			s.Set(i, c, margin)
		}
	}
	return s
}

// Predict returns the class index with the largest margin for each row.
// Ties resolve to the lowest class index.
func (svm *LinearSVM) Predict(x mat.Matrix) []int {
	return argmaxRows(svm.Scores(x))
}
