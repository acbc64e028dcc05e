package data

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

const (
	insertModelSQL = `INSERT INTO model (run_id, name, vocabulary, weights, created)
		VALUES (?, ?, ?, ?, ?)
	`

	selectLatestModelSQL = `SELECT id, run_id, name, vocabulary, weights, created
		FROM model
		WHERE name = ?
		ORDER BY id DESC
		LIMIT 1
	`
)

// Model is a persisted, serialized classifier. Vocabulary holds the
// JSON-encoded vectorizer, Weights the JSON-encoded model parameters.
type Model struct {
	ID         int64  `json:"id,omitempty" yaml:"id,omitempty"`
	RunID      int64  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Vocabulary string `json:"-" yaml:"-"`
	Weights    string `json:"-" yaml:"-"`
	Created    string `json:"created,omitempty" yaml:"created,omitempty"`
}

// SaveModel persists a serialized model for a run.
func SaveModel(db *sql.DB, m *Model) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	if m == nil || m.Name == "" || m.Vocabulary == "" || m.Weights == "" {
		return 0, errors.New("model name, vocabulary, and weights are required")
	}

	created := time.Now().UTC().Format(time.RFC3339)
	res, err := db.Exec(insertModelSQL, m.RunID, m.Name, m.Vocabulary, m.Weights, created)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to insert model: %s", m.Name)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get model id")
	}
	return id, nil
}

// GetLatestModel returns the most recently stored model with the given
// name, or an error when none exists.
func GetLatestModel(db *sql.DB, name string) (*Model, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if name == "" {
		return nil, errors.New("model name is required")
	}

	m := &Model{}
	err := db.QueryRow(selectLatestModelSQL, name).Scan(
		&m.ID, &m.RunID, &m.Name, &m.Vocabulary, &m.Weights, &m.Created)
	if err == sql.ErrNoRows {
		return nil, errors.Errorf("no trained model named %q, run train first", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query model: %s", name)
	}

	return m, nil
}
