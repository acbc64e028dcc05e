package data

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGetRun(t *testing.T) {
	db := setupTestDB(t)

	r := &Run{Seed: 42, TestSplit: 0.2, Documents: 100, Features: 250, DurationMS: 12}
	id, err := SaveRun(db, r)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	assert.NotEmpty(t, r.Created)

	got, err := GetRun(db, &id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Seed)
	assert.InDelta(t, 0.2, got.TestSplit, 1e-9)
	assert.Equal(t, int64(100), got.Documents)

	latest, err := GetRun(db, nil)
	require.NoError(t, err)
	assert.Equal(t, id, latest.ID)
}

func TestGetRunEmptyDB(t *testing.T) {
	db := setupTestDB(t)
	_, err := GetRun(db, nil)
	assert.True(t, errors.Is(err, ErrNoRuns))
}

func TestGetRunClosedDB(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Close())

	_, err := GetRun(db, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoRuns))
}

func TestSaveRunScores(t *testing.T) {
	db := setupTestDB(t)

	id, err := SaveRun(db, &Run{Seed: 1, TestSplit: 0.2})
	require.NoError(t, err)

	score := &RunModelScore{
		Model:      "naive-bayes",
		Accuracy:   0.91,
		WeightedF1: 0.89,
		Confusion:  [][]int{{19, 1}, {3, 12}},
	}
	metrics := []*RunMetric{
		{Label: "joy", Precision: 0.9, Recall: 0.95, F1: 0.92, Support: 20},
		{Label: "sadness", Precision: 0.88, Recall: 0.8, F1: 0.84, Support: 15},
	}
	require.NoError(t, SaveRunScores(db, id, score, metrics))

	scores, err := GetRunScores(db, id)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "naive-bayes", scores[0].Model)
	assert.InDelta(t, 0.91, scores[0].Accuracy, 1e-9)
	assert.Equal(t, [][]int{{19, 1}, {3, 12}}, scores[0].Confusion)

	got, err := GetRunMetrics(db, id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "joy", got[0].Label)
	assert.Equal(t, int64(20), got[0].Support)
}

func TestGetRuns(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 3; i++ {
		_, err := SaveRun(db, &Run{Seed: int64(i), TestSplit: 0.2})
		require.NoError(t, err)
	}

	runs, err := GetRuns(db, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Latest first.
	assert.Greater(t, runs[0].ID, runs[1].ID)
}

func TestSaveAndGetModel(t *testing.T) {
	db := setupTestDB(t)

	runID, err := SaveRun(db, &Run{Seed: 1, TestSplit: 0.2})
	require.NoError(t, err)

	_, err = SaveModel(db, &Model{
		RunID:      runID,
		Name:       "naive-bayes",
		Vocabulary: `{"vocabulary":{"happy":0}}`,
		Weights:    `{"alpha":1}`,
	})
	require.NoError(t, err)

	_, err = SaveModel(db, &Model{
		RunID:      runID,
		Name:       "naive-bayes",
		Vocabulary: `{"vocabulary":{"happy":0,"sad":1}}`,
		Weights:    `{"alpha":2}`,
	})
	require.NoError(t, err)

	m, err := GetLatestModel(db, "naive-bayes")
	require.NoError(t, err)
	assert.Contains(t, m.Weights, `"alpha":2`)
}

func TestGetLatestModelMissing(t *testing.T) {
	db := setupTestDB(t)
	_, err := GetLatestModel(db, "linear-svm")
	assert.Error(t, err)
}

func TestRunNilDB(t *testing.T) {
	_, err := SaveRun(nil, &Run{})
	assert.Error(t, err)

	_, err = GetRun(nil, nil)
	assert.Error(t, err)

	_, err = SaveModel(nil, &Model{})
	assert.Error(t, err)
}
