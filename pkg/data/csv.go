package data

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	TextColumnDefault  string = "text"
	LabelColumnDefault string = "label"
)

// CSVResult summarizes a single CSV file import.
type CSVResult struct {
	File    string `json:"file" yaml:"file"`
	Rows    int    `json:"rows" yaml:"rows"`
	Skipped int    `json:"skipped" yaml:"skipped"`
}

// ReadCSVDocuments parses a CSV file with a header row into documents.
// Rows with an empty text or label cell are skipped and counted, not
// treated as errors.
func ReadCSVDocuments(path, textCol, labelCol string) ([]*Document, *CSVResult, error) {
	if path == "" {
		return nil, nil, errors.New("path is required")
	}
	if textCol == "" {
		textCol = TextColumnDefault
	}
	if labelCol == "" {
		labelCol = LabelColumnDefault
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open CSV file: %s", path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read CSV header: %s", path)
	}

	textIdx, labelIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case strings.ToLower(textCol):
			textIdx = i
		case strings.ToLower(labelCol):
			labelIdx = i
		}
	}
	if textIdx < 0 {
		return nil, nil, errors.Errorf("column %q not found in %s", textCol, path)
	}
	if labelIdx < 0 {
		return nil, nil, errors.Errorf("column %q not found in %s", labelCol, path)
	}

	res := &CSVResult{File: path}
	docs := make([]*Document, 0)

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Skipped++
			continue
		}
		if len(rec) <= textIdx || len(rec) <= labelIdx {
			res.Skipped++
			continue
		}

		text := strings.TrimSpace(rec[textIdx])
		label := strings.ToLower(strings.TrimSpace(rec[labelIdx]))
		if text == "" || label == "" {
			res.Skipped++
			continue
		}

		res.Rows++
		docs = append(docs, &Document{
			Source: SourceCSV,
			Text:   text,
			Label:  label,
		})
	}

	return docs, res, nil
}
