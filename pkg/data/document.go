package data

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

const (
	SourceCSV    string = "csv"
	SourceGitHub string = "github"

	insertDocumentSQL = `INSERT INTO document (
			source, source_ref, text, label, import_date
		)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source, source_ref, text) DO NOTHING
	`

	selectDocumentsSQL = `SELECT id, source, source_ref, text, label, import_date
		FROM document
		WHERE label = COALESCE(?, label)
		ORDER BY id
	`

	selectLabelCountsSQL = `SELECT label, COUNT(*) as documents
		FROM document
		GROUP BY label
		ORDER BY documents DESC, label
	`

	countDocumentsSQL = `SELECT COUNT(*) FROM document`
)

type Document struct {
	ID        int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
	SourceRef string `json:"source_ref,omitempty" yaml:"source_ref,omitempty"`
	Text      string `json:"text,omitempty" yaml:"text,omitempty"`
	Label     string `json:"label,omitempty" yaml:"label,omitempty"`
	Imported  string `json:"imported,omitempty" yaml:"imported,omitempty"`
}

type LabelCount struct {
	Label     string `json:"label" yaml:"label"`
	Documents int64  `json:"documents" yaml:"documents"`
}

// SaveDocuments batch-inserts documents in a single transaction.
// Duplicates (same source, ref, and text) are silently skipped.
// Returns the number of rows actually inserted.
func SaveDocuments(db *sql.DB, docs []*Document) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	if len(docs) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}

	stmt, err := tx.Prepare(insertDocumentSQL)
	if err != nil {
		tx.Rollback()
		return 0, errors.Wrap(err, "failed to prepare document insert statement")
	}
	defer stmt.Close()

	now := time.Now().UTC().Format("2006-01-02")
	var inserted int64
	for _, d := range docs {
		if d.Text == "" || d.Label == "" {
			continue
		}
		res, err := stmt.Exec(d.Source, d.SourceRef, d.Text, d.Label, now)
		if err != nil {
			tx.Rollback()
			return 0, errors.Wrapf(err, "failed to insert document from %s", d.Source)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit documents")
	}

	return inserted, nil
}

// GetDocuments returns corpus documents, optionally filtered by label.
func GetDocuments(db *sql.DB, label *string) ([]*Document, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectDocumentsSQL, label)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query documents")
	}
	defer rows.Close()

	list := make([]*Document, 0)
	for rows.Next() {
		d := &Document{}
		if err := rows.Scan(&d.ID, &d.Source, &d.SourceRef, &d.Text, &d.Label, &d.Imported); err != nil {
			return nil, errors.Wrap(err, "failed to scan document row")
		}
		list = append(list, d)
	}

	return list, rows.Err()
}

// GetLabelCounts returns document counts per label, largest first.
func GetLabelCounts(db *sql.DB) ([]*LabelCount, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectLabelCountsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query label counts")
	}
	defer rows.Close()

	list := make([]*LabelCount, 0)
	for rows.Next() {
		c := &LabelCount{}
		if err := rows.Scan(&c.Label, &c.Documents); err != nil {
			return nil, errors.Wrap(err, "failed to scan label count row")
		}
		list = append(list, c)
	}

	return list, rows.Err()
}

// CountDocuments returns the total corpus size.
func CountDocuments(db *sql.DB) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}

	var count int64
	if err := db.QueryRow(countDocumentsSQL).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count documents")
	}
	return count, nil
}
