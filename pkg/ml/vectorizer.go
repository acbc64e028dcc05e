package ml

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	MinDocFreqDefault = 2
)

// Vectorizer converts tokenized documents into L2-normalized TF-IDF
// feature vectors. The vocabulary and inverse document frequencies are
// learned from the training corpus only.
type Vectorizer struct {
	MinDocFreq  int            `json:"min_doc_freq"`
	MaxFeatures int            `json:"max_features,omitempty"`
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
}

func NewVectorizer(minDocFreq, maxFeatures int) *Vectorizer {
	if minDocFreq < 1 {
		minDocFreq = 1
	}
	return &Vectorizer{
		MinDocFreq:  minDocFreq,
		MaxFeatures: maxFeatures,
	}
}

// NumFeatures returns the size of the learned vocabulary.
func (v *Vectorizer) NumFeatures() int {
	return len(v.Vocabulary)
}

// Fit builds the vocabulary and IDF weights from tokenized documents.
// Terms below the document frequency floor are pruned. When MaxFeatures
// is set, only the terms with the highest document frequency are kept
// (alphabetical order breaks ties to keep the vocabulary deterministic).
func (v *Vectorizer) Fit(docs [][]string) error {
	if len(docs) == 0 {
		return errors.New("no documents to fit")
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count >= v.MinDocFreq {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return errors.Errorf("no terms with document frequency >= %d", v.MinDocFreq)
	}

	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if df[terms[i]] != df[terms[j]] {
				return df[terms[i]] > df[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		// Smoothed IDF, same form scikit-learn uses.
		v.IDF[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	return nil
}

// Transform maps tokenized documents onto the learned vocabulary.
// The returned matrix has one row per document, each L2-normalized.
func (v *Vectorizer) Transform(docs [][]string) (*mat.Dense, error) {
	if len(v.Vocabulary) == 0 {
		return nil, errors.New("vectorizer not fitted")
	}

	m := mat.NewDense(len(docs), len(v.Vocabulary), nil)
	for i, doc := range docs {
		for _, term := range doc {
			if j, ok := v.Vocabulary[term]; ok {
				m.Set(i, j, m.At(i, j)+1)
			}
		}

		norm := 0.0
		for j := 0; j < len(v.IDF); j++ {
			w := m.At(i, j) * v.IDF[j]
			m.Set(i, j, w)
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := 0; j < len(v.IDF); j++ {
				m.Set(i, j, m.At(i, j)/norm)
			}
		}
	}

	return m, nil
}

// FitTransform fits the vectorizer and transforms the same documents.
func (v *Vectorizer) FitTransform(docs [][]string) (*mat.Dense, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}
