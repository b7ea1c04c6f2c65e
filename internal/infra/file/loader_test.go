package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stress-quiz/internal/domain"
)

const questionsJSON = `{
  "HTML": {
    "easy": [{"id": 1, "question": "What does <a> create?", "time": 20}],
    "hard": [{"id": 2, "question": "Explain the shadow DOM."}]
  },
  "curveball": [{"id": "cb", "question": "Favourite tag?"}]
}`

const interviewerYAML = `
Web Development:
  - id: w1
    scenario: A user reports slow page loads.
    candidate: I would add more servers.
  - id: w2
    question: What is a CDN?
    candidate: A cache near users.
    time: 50
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoaderReadsJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "questions.json", questionsJSON)

	ds, err := NewLoader(dir).LoadDataset(context.Background(), "questions")
	require.NoError(t, err)

	pool, err := ds.Pool("HTML", domain.Easy)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemID("1"), pool[0].ID)
	assert.Equal(t, "What does <a> create?", pool[0].Prompt)
	assert.Equal(t, 20.0, pool[0].Time)
	_, err = ds.Pool("HTML", domain.Normal)
	assert.ErrorIs(t, err, domain.ErrPoolNotFound)
	assert.Len(t, ds.Curveball, 1)
}

func TestLoaderReadsYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "interviewer-questions.yaml", interviewerYAML)

	ds, err := NewLoader(dir).LoadDataset(context.Background(), "interviewer-questions")
	require.NoError(t, err)

	pool, err := ds.Pool("Web Development", domain.Hard)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "A user reports slow page loads.", pool[0].Prompt)
	assert.Equal(t, "I would add more servers.", pool[0].SecondaryText)
	assert.Equal(t, "What is a CDN?", pool[1].Prompt)
	assert.Equal(t, 50.0, pool[1].Time)
}

func TestLoaderMissingAndInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{"HTML": 3}`)
	loader := NewLoader(dir)

	_, err := loader.LoadDataset(context.Background(), "questions")
	assert.True(t, errors.Is(err, domain.ErrDatasetNotFound))

	_, err = loader.LoadDataset(context.Background(), "../etc/passwd")
	assert.True(t, errors.Is(err, domain.ErrDatasetNotFound))

	_, err = loader.LoadDataset(context.Background(), "broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrDatasetNotFound))
}
