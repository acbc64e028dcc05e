package data

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// ErrNoRuns indicates no training run has been stored yet.
var ErrNoRuns = errors.New("no runs found, run train first")

const (
	insertRunSQL = `INSERT INTO run (created, seed, test_split, documents, features, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	insertRunModelSQL = `INSERT INTO run_model (run_id, model, accuracy, weighted_f1, confusion)
		VALUES (?, ?, ?, ?, ?)
	`

	insertRunMetricSQL = `INSERT INTO run_metric (run_id, model, label, precision, recall, f1, support)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectRunSQL = `SELECT id, created, seed, test_split, documents, features, duration_ms
		FROM run WHERE id = ?
	`

	selectLatestRunSQL = `SELECT id, created, seed, test_split, documents, features, duration_ms
		FROM run ORDER BY id DESC LIMIT 1
	`

	selectRunsSQL = `SELECT id, created, seed, test_split, documents, features, duration_ms
		FROM run ORDER BY id DESC LIMIT ?
	`

	selectRunModelsSQL = `SELECT model, accuracy, weighted_f1, confusion
		FROM run_model WHERE run_id = ? ORDER BY model
	`

	selectRunMetricsSQL = `SELECT model, label, precision, recall, f1, support
		FROM run_metric WHERE run_id = ? ORDER BY model, label
	`
)

// Run is one training/evaluation execution over the corpus.
type Run struct {
	ID         int64   `json:"id" yaml:"id"`
	Created    string  `json:"created" yaml:"created"`
	Seed       int64   `json:"seed" yaml:"seed"`
	TestSplit  float64 `json:"test_split" yaml:"test_split"`
	Documents  int64   `json:"documents" yaml:"documents"`
	Features   int64   `json:"features" yaml:"features"`
	DurationMS int64   `json:"duration_ms" yaml:"duration_ms"`
}

// RunModelScore is the summary score of one model within a run.
// Confusion is indexed [true][predicted] in the run's label order,
// the same order the per-label metric rows sort by.
type RunModelScore struct {
	Model      string  `json:"model" yaml:"model"`
	Accuracy   float64 `json:"accuracy" yaml:"accuracy"`
	WeightedF1 float64 `json:"weighted_f1" yaml:"weighted_f1"`
	Confusion  [][]int `json:"confusion" yaml:"confusion"`
}

// RunMetric is the per-label score of one model within a run.
type RunMetric struct {
	Model     string  `json:"model" yaml:"model"`
	Label     string  `json:"label" yaml:"label"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
	Support   int64   `json:"support" yaml:"support"`
}

// SaveRun persists the run row and returns its id.
func SaveRun(db *sql.DB, r *Run) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	if r == nil {
		return 0, errors.New("run is required")
	}

	created := time.Now().UTC().Format(time.RFC3339)
	res, err := db.Exec(insertRunSQL, created, r.Seed, r.TestSplit, r.Documents, r.Features, r.DurationMS)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert run")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get run id")
	}
	r.ID = id
	r.Created = created
	return id, nil
}

// SaveRunScores persists the model summary and per-label metrics for a run.
func SaveRunScores(db *sql.DB, runID int64, score *RunModelScore, metrics []*RunMetric) error {
	if db == nil {
		return errDBNotInitialized
	}
	if score == nil || score.Model == "" {
		return errors.New("model score is required")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	confusion, err := json.Marshal(score.Confusion)
	if err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "failed to serialize confusion matrix: %s", score.Model)
	}

	if _, err := tx.Exec(insertRunModelSQL, runID, score.Model, score.Accuracy, score.WeightedF1, string(confusion)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "failed to insert run model score: %s", score.Model)
	}

	for _, m := range metrics {
		if _, err := tx.Exec(insertRunMetricSQL, runID, score.Model, m.Label, m.Precision, m.Recall, m.F1, m.Support); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to insert run metric: %s/%s", score.Model, m.Label)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit run scores")
}

// GetRun returns a run by id, or the latest run when id is nil.
func GetRun(db *sql.DB, id *int64) (*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var row *sql.Row
	if id == nil {
		row = db.QueryRow(selectLatestRunSQL)
	} else {
		row = db.QueryRow(selectRunSQL, *id)
	}

	r := &Run{}
	err := row.Scan(&r.ID, &r.Created, &r.Seed, &r.TestSplit, &r.Documents, &r.Features, &r.DurationMS)
	if err == sql.ErrNoRows {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan run row")
	}

	return r, nil
}

// GetRuns lists the most recent runs.
func GetRuns(db *sql.DB, limit int) ([]*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit < 1 {
		limit = 10
	}

	rows, err := db.Query(selectRunsSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	list := make([]*Run, 0)
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Created, &r.Seed, &r.TestSplit, &r.Documents, &r.Features, &r.DurationMS); err != nil {
			return nil, errors.Wrap(err, "failed to scan run row")
		}
		list = append(list, r)
	}

	return list, rows.Err()
}

// GetRunScores returns the model summaries for a run.
func GetRunScores(db *sql.DB, runID int64) ([]*RunModelScore, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectRunModelsSQL, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query scores for run: %d", runID)
	}
	defer rows.Close()

	list := make([]*RunModelScore, 0)
	for rows.Next() {
		s := &RunModelScore{}
		var confusion string
		if err := rows.Scan(&s.Model, &s.Accuracy, &s.WeightedF1, &confusion); err != nil {
			return nil, errors.Wrap(err, "failed to scan run model row")
		}
		if err := json.Unmarshal([]byte(confusion), &s.Confusion); err != nil {
			return nil, errors.Wrapf(err, "failed to parse confusion matrix: %s", s.Model)
		}
		list = append(list, s)
	}

	return list, rows.Err()
}

// GetRunMetrics returns the per-label metrics for a run.
func GetRunMetrics(db *sql.DB, runID int64) ([]*RunMetric, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectRunMetricsSQL, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query metrics for run: %d", runID)
	}
	defer rows.Close()

	list := make([]*RunMetric, 0)
	for rows.Next() {
		m := &RunMetric{}
		if err := rows.Scan(&m.Model, &m.Label, &m.Precision, &m.Recall, &m.F1, &m.Support); err != nil {
			return nil, errors.Wrap(err, "failed to scan run metric row")
		}
		list = append(list, m)
	}

	return list, rows.Err()
}
