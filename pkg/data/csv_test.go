package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadCSVDocuments(t *testing.T) {
	path := writeTestCSV(t, `text,label
"i am so happy",joy
"feeling down today",sadness
"this makes me furious",anger
`)

	docs, res, err := ReadCSVDocuments(path, "", "")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 0, res.Skipped)
	require.Len(t, docs, 3)
	assert.Equal(t, SourceCSV, docs[0].Source)
	assert.Equal(t, "i am so happy", docs[0].Text)
	assert.Equal(t, "joy", docs[0].Label)
}

func TestReadCSVDocumentsCustomColumns(t *testing.T) {
	path := writeTestCSV(t, `id,comment,emotion
1,"great day",joy
2,"awful day",sadness
`)

	docs, res, err := ReadCSVDocuments(path, "comment", "emotion")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "great day", docs[0].Text)
}

func TestReadCSVDocumentsSkipsBadRows(t *testing.T) {
	path := writeTestCSV(t, `text,label
"valid row",joy
"",joy
"no label",
short
`)

	docs, res, err := ReadCSVDocuments(path, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, 3, res.Skipped)
	assert.Len(t, docs, 1)
}

func TestReadCSVDocumentsNormalizesLabel(t *testing.T) {
	path := writeTestCSV(t, `text,label
"some text",  JOY
`)

	docs, _, err := ReadCSVDocuments(path, "", "")
	require.NoError(t, err)
	assert.Equal(t, "joy", docs[0].Label)
}

func TestReadCSVDocumentsErrors(t *testing.T) {
	_, _, err := ReadCSVDocuments("", "", "")
	assert.Error(t, err)

	_, _, err = ReadCSVDocuments("/does/not/exist.csv", "", "")
	assert.Error(t, err)

	path := writeTestCSV(t, `foo,bar
a,b
`)
	_, _, err = ReadCSVDocuments(path, "", "")
	assert.Error(t, err)
}
