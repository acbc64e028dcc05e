package ml

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// AlphaDefault is the Lidstone smoothing factor.
	AlphaDefault = 1.0
)

// NaiveBayes is a multinomial Naive Bayes classifier over TF-IDF
// (or raw count) features.
type NaiveBayes struct {
	Alpha          float64     `json:"alpha"`
	Labels         []string    `json:"labels"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

func NewNaiveBayes(labels []string) *NaiveBayes {
	return &NaiveBayes{
		Alpha:  AlphaDefault,
		Labels: labels,
	}
}

func (nb *NaiveBayes) Name() string {
	return "naive-bayes"
}

// Fit estimates class priors and per-class feature likelihoods.
// y holds class indices into Labels.
func (nb *NaiveBayes) Fit(x mat.Matrix, y []int) error {
	rows, cols := x.Dims()
	if rows == 0 || rows != len(y) {
		return errors.Errorf("feature matrix rows (%d) must match labels (%d)", rows, len(y))
	}

	classes := len(nb.Labels)
	counts := make([]float64, classes)
	featureSums := make([][]float64, classes)
	for c := range featureSums {
		featureSums[c] = make([]float64, cols)
	}

	for i, c := range y {
		if c < 0 || c >= classes {
			return errors.Errorf("label index %d out of range", c)
		}
		counts[c]++
		for j := 0; j < cols; j++ {
			featureSums[c][j] += x.At(i, j)
		}
	}

	nb.ClassLogPrior = make([]float64, classes)
	nb.FeatureLogProb = make([][]float64, classes)
	for c := 0; c < classes; c++ {
		if counts[c] == 0 {
			return errors.Errorf("class %q has no training documents", nb.Labels[c])
		}
		nb.ClassLogPrior[c] = math.Log(counts[c] / float64(rows))

		total := 0.0
		for j := 0; j < cols; j++ {
			total += featureSums[c][j]
		}
		denom := total + nb.Alpha*float64(cols)

		nb.FeatureLogProb[c] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			nb.FeatureLogProb[c][j] = math.Log((featureSums[c][j] + nb.Alpha) / denom)
		}
	}

	return nil
}

// Scores returns the joint log-likelihood of each class for each row.
func (nb *NaiveBayes) Scores(x mat.Matrix) *mat.Dense {
	rows, cols := x.Dims()
	classes := len(nb.Labels)

	s := mat.NewDense(rows, classes, nil)
	for i := 0; i < rows; i++ {
		for c := 0; c < classes; c++ {
			sum := nb.ClassLogPrior[c]
			for j := 0; j < cols; j++ {
				if v := x.At(i, j); v != 0 {
					sum += v * nb.FeatureLogProb[c][j]
				}
			}
			s.Set(i, c, sum)
		}
	}
	return s
}

// Predict returns the most likely class index for each row.
// Ties resolve to the lowest class index.
func (nb *NaiveBayes) Predict(x mat.Matrix) []int {
	return argmaxRows(nb.Scores(x))
}

func argmaxRows(s *mat.Dense) []int {
	rows, cols := s.Dims()
	out := make([]int, rows)
	for i := 0; i < rows; i++ {
		best := 0
		for c := 1; c < cols; c++ {
			if s.At(i, c) > s.At(i, best) {
				best = c
			}
		}
		out[i] = best
	}
	return out
}
