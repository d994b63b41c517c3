package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "[Bug] crash on save", want: "crash on save"},
		{in: "crash on save (refs #123)", want: "crash on save"},
		{in: "Bug: crash on save", want: "crash on save"},
		{in: "error: crash on save", want: "crash on save"},
		{in: "plain title", want: "plain title"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanTitle(tt.in))
	}
}

func TestCleanAnswer(t *testing.T) {
	t.Parallel()

	raw := "The issue was addressed with the following discussion:\n\n" +
		"User 'bot' said:\n---\nThis issue is currently awaiting triage.\n---\n\n" +
		"User 'maintainer' said:\n---\nfixed in v2\n<details>long diff here</details>\n/sig node\n---"

	cleaned := CleanAnswer(raw)

	assert.NotContains(t, cleaned, "User '")
	assert.NotContains(t, cleaned, "---")
	assert.NotContains(t, cleaned, "<details>")
	assert.NotContains(t, cleaned, "/sig")
	assert.Contains(t, cleaned, "fixed in v2")
}

func TestDetermineCategory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "troubleshooting", DetermineCategory("the app crashes with a panic"))
	assert.Equal(t, "feature_request", DetermineCategory("please support dark mode"))
	assert.Equal(t, "documentation", DetermineCategory("the guide is unclear"))
	assert.Equal(t, "general", DetermineCategory("just a thought"))
}

func TestGolden_EntrySkipsEmptyAnswer(t *testing.T) {
	t.Parallel()

	golden := NewGolden(testLogger(t), 75, 1)
	pair := TrainingPair{
		Instruction: "A user reported the following issue titled 'crash' in the 'acme/widgets' repository.",
		Response:    "The issue was addressed with the following discussion:\n\n---\n---",
	}

	_, ok := golden.Entry(0, pair)
	assert.False(t, ok)
}

func TestGolden_Entry(t *testing.T) {
	t.Parallel()

	golden := NewGolden(testLogger(t), 75, 1)
	pair := TrainingPair{
		Instruction: "A user reported the following issue titled '[Bug] crash on save' in the 'acme/widgets' repository. " +
			"Please provide a summary of the discussion that led to its resolution.\n\nISSUE DESCRIPTION:\nboom",
		Response: "The issue was addressed with the following discussion:\n\nUser 'bob' said:\n---\nfixed in v2\n---",
	}

	entry, ok := golden.Entry(3, pair)
	require.True(t, ok)

	assert.Equal(t, "gen_nat_003", entry.Id)
	assert.Equal(t, "troubleshooting", entry.Category)
	assert.Equal(t, "acme_widgets_issue.json", entry.SourceFile)
	assert.Contains(t, entry.Context, "Repository: acme/widgets")
	assert.Contains(t, entry.Context, "Title: [Bug] crash on save")
	assert.Contains(t, entry.Question, "crash on save")
	assert.NotContains(t, entry.Question, "[Bug]")
	assert.Equal(t, "fixed in v2", entry.IdealAnswer)
}

func TestGolden_RunSamplesAndWritesJson(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "pairs.jsonl")
	outputPath := filepath.Join(dir, "golden.json")

	pair := TrainingPair{
		Instruction: "A user reported the following issue titled 'crash' in the 'acme/widgets' repository.",
		Response:    "The issue was addressed with the following discussion:\n\nUser 'bob' said:\n---\nfixed\n---",
	}
	data, err := json.Marshal(pair)
	require.NoError(t, err)

	content := ""
	for i := 0; i < 10; i++ {
		content += string(data) + "\n"
	}
	require.NoError(t, os.WriteFile(inputPath, []byte(content), 0o644))

	golden := NewGolden(testLogger(t), 5, 42)
	count, err := golden.Run(inputPath, outputPath)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	raw, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var entries []GoldenEntry
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 5)
	assert.Equal(t, "gen_nat_000", entries[0].Id)
}
