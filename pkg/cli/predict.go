package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mchmarny/moodctl/pkg/data"
	"github.com/mchmarny/moodctl/pkg/ml"
	"github.com/mchmarny/moodctl/pkg/text"
	"github.com/urfave/cli/v2"
)

const (
	modelNB  = "nb"
	modelSVM = "svm"
)

var (
	predictTextFlag = &cli.StringFlag{
		Name:     "text",
		Usage:    "Text to classify",
		Required: true,
	}

	modelNameFlag = &cli.StringFlag{
		Name:  "model",
		Usage: fmt.Sprintf("Model to use [%s, %s]", modelNB, modelSVM),
		Value: modelSVM,
	}

	predictCmd = &cli.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Classify text with the latest trained model",
		UsageText: `moodctl predict --text "this made my day"
   moodctl predict --model nb --text "I can't believe they did this"`,
		Action: cmdPredict,
		Flags: []cli.Flag{
			predictTextFlag,
			modelNameFlag,
		},
	}
)

type PredictResult struct {
	Model  string             `json:"model" yaml:"model"`
	Text   string             `json:"text" yaml:"text"`
	Label  string             `json:"label" yaml:"label"`
	Scores map[string]float64 `json:"scores" yaml:"scores"`
}

func cmdPredict(c *cli.Context) error {
	cfg := getConfig(c)

	res, err := classify(cfg.DB, c.String(modelNameFlag.Name), c.String(predictTextFlag.Name))
	if err != nil {
		return err
	}

	if err := encode(res); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

// classify loads the latest stored model and scores a single text.
// Shared by the predict command and the server API.
func classify(db *sql.DB, modelAlias, input string) (*PredictResult, error) {
	if input == "" {
		return nil, fmt.Errorf("text is required")
	}

	name, err := resolveModelName(modelAlias)
	if err != nil {
		return nil, err
	}

	vec, clf, err := loadClassifier(db, name)
	if err != nil {
		return nil, err
	}

	x, err := vec.Transform([][]string{text.Tokenize(input)})
	if err != nil {
		return nil, fmt.Errorf("vectorizing text: %w", err)
	}

	scores := clf.Scores(x)
	pred := clf.Predict(x)[0]

	var labels []string
	switch m := clf.(type) {
	case *ml.NaiveBayes:
		labels = m.Labels
	case *ml.LinearSVM:
		labels = m.Labels
	}

	res := &PredictResult{
		Model:  name,
		Text:   input,
		Label:  labels[pred],
		Scores: make(map[string]float64, len(labels)),
	}
	for i, l := range labels {
		res.Scores[l] = scores.At(0, i)
	}
	return res, nil
}

func resolveModelName(alias string) (string, error) {
	switch alias {
	case "", modelSVM, "linear-svm":
		return "linear-svm", nil
	case modelNB, "naive-bayes":
		return "naive-bayes", nil
	default:
		return "", fmt.Errorf("unknown model %q, expected %s or %s", alias, modelNB, modelSVM)
	}
}

// loadClassifier deserializes the latest stored vectorizer and model.
func loadClassifier(db *sql.DB, name string) (*ml.Vectorizer, ml.Classifier, error) {
	m, err := data.GetLatestModel(db, name)
	if err != nil {
		return nil, nil, fmt.Errorf("loading model: %w", err)
	}

	vec := &ml.Vectorizer{}
	if err := json.Unmarshal([]byte(m.Vocabulary), vec); err != nil {
		return nil, nil, fmt.Errorf("decoding vectorizer for %s: %w", name, err)
	}

	var clf ml.Classifier
	switch name {
	case "naive-bayes":
		clf = &ml.NaiveBayes{}
	case "linear-svm":
		clf = &ml.LinearSVM{}
	default:
		return nil, nil, fmt.Errorf("unknown model name: %s", name)
	}

	if err := json.Unmarshal([]byte(m.Weights), clf); err != nil {
		return nil, nil, fmt.Errorf("decoding weights for %s: %w", name, err)
	}

	return vec, clf, nil
}
