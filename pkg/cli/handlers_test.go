package cli

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mchmarny/moodctl/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), data.DataFileName)
	require.NoError(t, data.Init(path))

	db, err := data.GetDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestLabelsAPIHandler(t *testing.T) {
	db := setupTestDB(t)

	_, err := data.SaveDocuments(db, []*data.Document{
		{Source: data.SourceCSV, Text: "happy text", Label: "joy"},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/data/labels", nil)
	makeRouter(db).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "joy")
}

func TestCorpusAPIHandler(t *testing.T) {
	db := setupTestDB(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/data/corpus", nil)
	makeRouter(db).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"documents":0`)
}

func TestPredictAPIHandlerValidation(t *testing.T) {
	db := setupTestDB(t)
	router := makeRouter(db)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/data/predict", strings.NewReader("not json"))
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/data/predict", strings.NewReader(`{"model":"svm"}`))
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictAPIHandlerNoModel(t *testing.T) {
	db := setupTestDB(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/data/predict", strings.NewReader(`{"text":"some text"}`))
	makeRouter(db).ServeHTTP(w, r)

	// No trained model stored yet.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRunsAPIHandler(t *testing.T) {
	db := setupTestDB(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/data/runs?limit=5", nil)
	makeRouter(db).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestLatestRunAPIHandlerEmpty(t *testing.T) {
	db := setupTestDB(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/data/runs/latest", nil)
	makeRouter(db).ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLatestRunAPIHandler(t *testing.T) {
	db := setupTestDB(t)

	id, err := data.SaveRun(db, &data.Run{Seed: 42, TestSplit: 0.2, Documents: 8})
	require.NoError(t, err)
	require.NoError(t, data.SaveRunScores(db, id, &data.RunModelScore{
		Model:      "linear-svm",
		Accuracy:   1,
		WeightedF1: 1,
		Confusion:  [][]int{{1, 0}, {0, 1}},
	}, []*data.RunMetric{
		{Label: "joy", Precision: 1, Recall: 1, F1: 1, Support: 1},
		{Label: "sadness", Precision: 1, Recall: 1, F1: 1, Support: 1},
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/data/runs/latest", nil)
	makeRouter(db).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"confusion":[[1,0],[0,1]]`)
}

func TestLatestRunAPIHandlerDBError(t *testing.T) {
	db := setupTestDB(t)
	router := makeRouter(db)
	require.NoError(t, db.Close())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/data/runs/latest", nil)
	router.ServeHTTP(w, r)

	// A closed handle is a query failure, not an empty run table.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
