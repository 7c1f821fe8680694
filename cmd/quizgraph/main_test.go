package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGenerateValidateGraph(t *testing.T) {
	dir := t.TempDir()
	descs := filepath.Join(dir, "survey.json")
	require.NoError(t, os.WriteFile(descs, []byte(`{
		"questions": [
			{"type": "choice-single", "question": "Pick one", "options": [{"label": "A", "score": 1}, {"label": "B", "score": 3}]},
			{"type": "rating", "question": "How much?"}
		],
		"scoreRanges": [{"min": 0, "max": 10, "title": "All"}]
	}`), 0644))
	quiz := filepath.Join(dir, "quiz.json")

	_, err := run(t, "generate", descs, "-o", quiz)
	require.NoError(t, err)

	data, err := os.ReadFile(quiz)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "survey"`)
	assert.Contains(t, string(data), `"canvasData"`)

	out, err := run(t, "validate", "--plain", quiz)
	require.NoError(t, err)
	assert.Contains(t, out, "Quiz structure complete")

	out, err = run(t, "graph", quiz)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph LR"))
}

func TestValidateReportsErrors(t *testing.T) {
	quiz := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(quiz, []byte(`{"nodes":[{"id":"s","type":"start"}],"edges":[]}`), 0644))

	out, err := run(t, "validate", "--plain", quiz)
	assert.ErrorIs(t, err, errInvalidQuiz)
	assert.Contains(t, out, "Quiz structure incomplete")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "quizgraph version ")
}
