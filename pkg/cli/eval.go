package cli

import (
	"fmt"

	"github.com/mchmarny/moodctl/pkg/data"
	"github.com/urfave/cli/v2"
)

var (
	runIDFlag = &cli.Int64Flag{
		Name:  "run",
		Usage: "Run ID to report on (default: latest)",
	}

	runLimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Number of runs to list with --list",
		Value: 10,
	}

	listRunsFlag = &cli.BoolFlag{
		Name:  "list",
		Usage: "List recent runs instead of reporting a single one",
	}

	evalCmd = &cli.Command{
		Name:    "eval",
		Aliases: []string{"e"},
		Usage:   "Report stored evaluation scores",
		UsageText: `moodctl eval             # latest run: accuracy and weighted F1 per model
   moodctl eval --run 3     # specific run
   moodctl eval --list      # recent runs`,
		Action: cmdEval,
		Flags: []cli.Flag{
			runIDFlag,
			runLimitFlag,
			listRunsFlag,
		},
	}
)

type EvalResult struct {
	Run     *data.Run             `json:"run" yaml:"run"`
	Scores  []*data.RunModelScore `json:"scores" yaml:"scores"`
	Metrics []*data.RunMetric     `json:"metrics" yaml:"metrics"`
}

func cmdEval(c *cli.Context) error {
	cfg := getConfig(c)

	if c.Bool(listRunsFlag.Name) {
		runs, err := data.GetRuns(cfg.DB, c.Int(runLimitFlag.Name))
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		return encode(runs)
	}

	var runID *int64
	if c.IsSet(runIDFlag.Name) {
		id := c.Int64(runIDFlag.Name)
		runID = &id
	}

	run, err := data.GetRun(cfg.DB, runID)
	if err != nil {
		return fmt.Errorf("getting run: %w", err)
	}

	scores, err := data.GetRunScores(cfg.DB, run.ID)
	if err != nil {
		return fmt.Errorf("getting run scores: %w", err)
	}

	metrics, err := data.GetRunMetrics(cfg.DB, run.ID)
	if err != nil {
		return fmt.Errorf("getting run metrics: %w", err)
	}

	for _, s := range scores {
		fmt.Printf("%s: accuracy=%.4f weighted-f1=%.4f\n", s.Model, s.Accuracy, s.WeightedF1)
	}

	res := &EvalResult{Run: run, Scores: scores, Metrics: metrics}
	if err := encode(res); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}
