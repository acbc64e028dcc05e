package ml

import (
	"github.com/pkg/errors"
)

// LabelReport holds per-label precision, recall, and F1.
type LabelReport struct {
	Label     string  `json:"label" yaml:"label"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
	Support   int     `json:"support" yaml:"support"`
}

// Evaluation is the scoring summary for one model on one test set.
type Evaluation struct {
	Accuracy   float64        `json:"accuracy" yaml:"accuracy"`
	WeightedF1 float64        `json:"weighted_f1" yaml:"weighted_f1"`
	Labels     []*LabelReport `json:"labels" yaml:"labels"`
	Confusion  [][]int        `json:"confusion" yaml:"confusion"`
}

// Evaluate scores predictions against true labels. Weighted F1 uses
// true-label support as weights. The confusion matrix is indexed
// [true][predicted] in label order.
func Evaluate(yTrue, yPred []int, labels []string) (*Evaluation, error) {
	if len(yTrue) == 0 {
		return nil, errors.New("nothing to evaluate")
	}
	if len(yTrue) != len(yPred) {
		return nil, errors.Errorf("prediction count (%d) must match test set size (%d)", len(yPred), len(yTrue))
	}

	classes := len(labels)
	confusion := make([][]int, classes)
	for i := range confusion {
		confusion[i] = make([]int, classes)
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] < 0 || yTrue[i] >= classes || yPred[i] < 0 || yPred[i] >= classes {
			return nil, errors.Errorf("label index out of range at row %d", i)
		}
		confusion[yTrue[i]][yPred[i]]++
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	e := &Evaluation{
		Accuracy:  float64(correct) / float64(len(yTrue)),
		Labels:    make([]*LabelReport, 0, classes),
		Confusion: confusion,
	}

	weightedSum := 0.0
	for c := 0; c < classes; c++ {
		tp := confusion[c][c]
		fp, fn := 0, 0
		for o := 0; o < classes; o++ {
			if o == c {
				continue
			}
			fp += confusion[o][c]
			fn += confusion[c][o]
		}

		r := &LabelReport{
			Label:   labels[c],
			Support: tp + fn,
		}
		if tp+fp > 0 {
			r.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			r.Recall = float64(tp) / float64(tp+fn)
		}
		if r.Precision+r.Recall > 0 {
			r.F1 = 2 * r.Precision * r.Recall / (r.Precision + r.Recall)
		}

		weightedSum += r.F1 * float64(r.Support)
		e.Labels = append(e.Labels, r)
	}
	e.WeightedF1 = weightedSum / float64(len(yTrue))

	return e, nil
}
