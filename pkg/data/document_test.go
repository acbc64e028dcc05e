package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []*Document {
	return []*Document{
		{Source: SourceCSV, Text: "i am so happy today", Label: "joy"},
		{Source: SourceCSV, Text: "this is terrible news", Label: "sadness"},
		{Source: SourceCSV, Text: "what a wonderful surprise", Label: "joy"},
	}
}

func TestSaveDocuments(t *testing.T) {
	db := setupTestDB(t)

	n, err := SaveDocuments(db, testDocs())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// Same docs again are deduped.
	n, err = SaveDocuments(db, testDocs())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	count, err := CountDocuments(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSaveDocumentsSkipsEmpty(t *testing.T) {
	db := setupTestDB(t)

	n, err := SaveDocuments(db, []*Document{
		{Source: SourceCSV, Text: "", Label: "joy"},
		{Source: SourceCSV, Text: "valid text", Label: ""},
		{Source: SourceCSV, Text: "valid text", Label: "joy"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSaveDocumentsNilDB(t *testing.T) {
	_, err := SaveDocuments(nil, testDocs())
	assert.Error(t, err)
}

func TestGetDocuments(t *testing.T) {
	db := setupTestDB(t)

	_, err := SaveDocuments(db, testDocs())
	require.NoError(t, err)

	all, err := GetDocuments(db, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	joy := "joy"
	filtered, err := GetDocuments(db, &joy)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
	for _, d := range filtered {
		assert.Equal(t, "joy", d.Label)
	}
}

func TestGetLabelCounts(t *testing.T) {
	db := setupTestDB(t)

	_, err := SaveDocuments(db, testDocs())
	require.NoError(t, err)

	counts, err := GetLabelCounts(db)
	require.NoError(t, err)
	require.Len(t, counts, 2)

	// Largest label first.
	assert.Equal(t, "joy", counts[0].Label)
	assert.Equal(t, int64(2), counts[0].Documents)
	assert.Equal(t, "sadness", counts[1].Label)
}

func TestGetDocumentsEmptyDB(t *testing.T) {
	db := setupTestDB(t)

	all, err := GetDocuments(db, nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	counts, err := GetLabelCounts(db)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
