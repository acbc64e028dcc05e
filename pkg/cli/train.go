package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mchmarny/moodctl/pkg/data"
	"github.com/mchmarny/moodctl/pkg/ml"
	"github.com/mchmarny/moodctl/pkg/text"
	"github.com/urfave/cli/v2"
)

var (
	testSplitFlag = &cli.Float64Flag{
		Name:  "test-split",
		Usage: "Fraction of the corpus held out for evaluation",
		Value: ml.TestSplitDefault,
	}

	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Random seed for the split and SGD shuffle",
		Value: ml.SeedDefault,
	}

	minDocFreqFlag = &cli.IntFlag{
		Name:  "min-df",
		Usage: "Minimum document frequency for vocabulary terms",
		Value: ml.MinDocFreqDefault,
	}

	maxFeaturesFlag = &cli.IntFlag{
		Name:  "max-features",
		Usage: "Cap on vocabulary size, highest document frequency wins (0 = unlimited)",
	}

	epochsFlag = &cli.IntFlag{
		Name:  "epochs",
		Usage: "Number of SGD epochs for the SVM",
		Value: ml.EpochsDefault,
	}

	trainCmd = &cli.Command{
		Name:    "train",
		Aliases: []string{"t"},
		Usage:   "Train and evaluate both classifiers on the imported corpus",
		UsageText: `moodctl train                                   # defaults: 80/20 split, seed 42
   moodctl train --test-split 0.3 --seed 7 --min-df 3 --epochs 20`,
		Action: cmdTrain,
		Flags: []cli.Flag{
			testSplitFlag,
			seedFlag,
			minDocFreqFlag,
			maxFeaturesFlag,
			epochsFlag,
		},
	}
)

type TrainResult struct {
	Run    *data.Run                 `json:"run" yaml:"run"`
	Labels []string                  `json:"labels" yaml:"labels"`
	Models map[string]*ml.Evaluation `json:"models" yaml:"models"`
}

func cmdTrain(c *cli.Context) error {
	start := time.Now()
	cfg := getConfig(c)

	testSplit := c.Float64(testSplitFlag.Name)
	seed := c.Int64(seedFlag.Name)

	docs, err := data.GetDocuments(cfg.DB, nil)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("corpus is empty, run import first")
	}

	labels, y := encodeLabels(docs)
	if len(labels) < 2 {
		return fmt.Errorf("need at least 2 labels to train, corpus has %d", len(labels))
	}

	tokens := make([][]string, len(docs))
	for i, d := range docs {
		tokens[i] = text.Tokenize(d.Text)
	}

	trainIdx, testIdx, err := ml.StratifiedSplit(y, testSplit, seed)
	if err != nil {
		return fmt.Errorf("splitting corpus: %w", err)
	}
	if len(testIdx) == 0 {
		return fmt.Errorf("test split is empty, corpus too small for split %.2f", testSplit)
	}
	slog.Debug("split corpus", "train", len(trainIdx), "test", len(testIdx))

	trainDocs, trainY := gather(tokens, y, trainIdx)
	testDocs, testY := gather(tokens, y, testIdx)

	vec := ml.NewVectorizer(c.Int(minDocFreqFlag.Name), c.Int(maxFeaturesFlag.Name))
	xTrain, err := vec.FitTransform(trainDocs)
	if err != nil {
		return fmt.Errorf("vectorizing training documents: %w", err)
	}
	xTest, err := vec.Transform(testDocs)
	if err != nil {
		return fmt.Errorf("vectorizing test documents: %w", err)
	}
	slog.Debug("vectorized corpus", "features", vec.NumFeatures())

	run := &data.Run{
		Seed:      seed,
		TestSplit: testSplit,
		Documents: int64(len(docs)),
		Features:  int64(vec.NumFeatures()),
	}

	res := &TrainResult{
		Run:    run,
		Labels: labels,
		Models: make(map[string]*ml.Evaluation),
	}

	models := []ml.Classifier{
		ml.NewNaiveBayes(labels),
		ml.NewLinearSVM(labels, c.Int(epochsFlag.Name), seed),
	}
	for _, m := range models {
		slog.Info("training model", "model", m.Name())
		if err := m.Fit(xTrain, trainY); err != nil {
			return fmt.Errorf("training %s: %w", m.Name(), err)
		}

		e, err := ml.Evaluate(testY, m.Predict(xTest), labels)
		if err != nil {
			return fmt.Errorf("evaluating %s: %w", m.Name(), err)
		}
		res.Models[m.Name()] = e
	}

	run.DurationMS = time.Since(start).Milliseconds()
	if err := saveTrainResult(cfg, res, vec, models); err != nil {
		return err
	}

	for _, m := range models {
		e := res.Models[m.Name()]
		fmt.Printf("%s: accuracy=%.4f weighted-f1=%.4f\n", m.Name(), e.Accuracy, e.WeightedF1)
	}

	if err := encode(res); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

// encodeLabels maps document labels to dense indices, alphabetical.
func encodeLabels(docs []*data.Document) ([]string, []int) {
	set := make(map[string]int)
	for _, d := range docs {
		set[d.Label] = 0
	}

	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for i, l := range labels {
		set[l] = i
	}

	y := make([]int, len(docs))
	for i, d := range docs {
		y[i] = set[d.Label]
	}
	return labels, y
}

func gather(tokens [][]string, y []int, idx []int) ([][]string, []int) {
	outDocs := make([][]string, len(idx))
	outY := make([]int, len(idx))
	for i, j := range idx {
		outDocs[i] = tokens[j]
		outY[i] = y[j]
	}
	return outDocs, outY
}

func saveTrainResult(cfg *appConfig, res *TrainResult, vec *ml.Vectorizer, models []ml.Classifier) error {
	runID, err := data.SaveRun(cfg.DB, res.Run)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	vocab, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("serializing vectorizer: %w", err)
	}

	for _, m := range models {
		e := res.Models[m.Name()]

		metrics := make([]*data.RunMetric, 0, len(e.Labels))
		for _, l := range e.Labels {
			metrics = append(metrics, &data.RunMetric{
				Label:     l.Label,
				Precision: l.Precision,
				Recall:    l.Recall,
				F1:        l.F1,
				Support:   int64(l.Support),
			})
		}

		score := &data.RunModelScore{
			Model:      m.Name(),
			Accuracy:   e.Accuracy,
			WeightedF1: e.WeightedF1,
			Confusion:  e.Confusion,
		}
		if err := data.SaveRunScores(cfg.DB, runID, score, metrics); err != nil {
			return fmt.Errorf("saving scores for %s: %w", m.Name(), err)
		}

		weights, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("serializing %s: %w", m.Name(), err)
		}
		if _, err := data.SaveModel(cfg.DB, &data.Model{
			RunID:      runID,
			Name:       m.Name(),
			Vocabulary: string(vocab),
			Weights:    string(weights),
		}); err != nil {
			return fmt.Errorf("saving model %s: %w", m.Name(), err)
		}
	}

	return nil
}
