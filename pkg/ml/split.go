package ml

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"
)

const (
	TestSplitDefault = 0.2
	SeedDefault      = 42
)

// StratifiedSplit partitions document indices into train and test sets,
// preserving the label distribution within each set. Splits with the
// same seed are identical. Labels with a single document go to train.
func StratifiedSplit(y []int, testRatio float64, seed int64) (train, test []int, err error) {
	if len(y) == 0 {
		return nil, nil, errors.New("no labels to split")
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, errors.Errorf("test ratio must be in (0,1), got %f", testRatio)
	}

	byClass := make(map[int][]int)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}

	// Deterministic class order so the same seed always yields
	// the same split.
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rnd := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		idx := byClass[c]
		rnd.Shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})

		nTest := int(float64(len(idx)) * testRatio)
		if nTest == 0 && len(idx) > 1 {
			nTest = 1
		}

		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}

	if len(train) == 0 {
		return nil, nil, errors.New("train split is empty")
	}

	return train, test, nil
}
