package dataset

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/issue-crawler/internal/model"
	"github.com/thep200/issue-crawler/pkg/log"
)

func testLogger(t *testing.T) log.Logger {
	t.Helper()
	logger, err := log.NewCslLogger()
	require.NoError(t, err)
	return logger
}

func sampleRecord(comments int) *model.IssueRecord {
	record := &model.IssueRecord{
		Repo:                "acme/widgets",
		IssueNumber:         7,
		IssueTitle:          "crash on save",
		IssueBody:           "it crashes every time",
		IssueAuthor:         "alice",
		CommentsFetchStatus: model.CommentsFetchOk,
	}
	for i := 0; i < comments; i++ {
		record.Comments = append(record.Comments, model.CommentRecord{Author: "bob", Body: "try again"})
	}
	return record
}

func TestFormatter_Instruction(t *testing.T) {
	t.Parallel()

	formatter := NewFormatter(testLogger(t), 2, 3000)
	instruction := formatter.Instruction(sampleRecord(2))

	assert.Contains(t, instruction, "titled 'crash on save'")
	assert.Contains(t, instruction, "in the 'acme/widgets' repository")
	assert.Contains(t, instruction, "ISSUE DESCRIPTION:\nit crashes every time")
}

func TestFormatter_InstructionTruncatesLongBody(t *testing.T) {
	t.Parallel()

	formatter := NewFormatter(testLogger(t), 2, 100)
	record := sampleRecord(2)
	record.IssueBody = strings.Repeat("x", 500)

	instruction := formatter.Instruction(record)
	assert.Contains(t, instruction, "... (truncated)")
	assert.NotContains(t, instruction, strings.Repeat("x", 101))
}

func TestFormatter_InstructionTruncationKeepsValidUtf8(t *testing.T) {
	t.Parallel()

	formatter := NewFormatter(testLogger(t), 2, 10)
	record := sampleRecord(2)
	// Rune 3 byte: giới hạn 10 byte rơi vào giữa một ký tự
	record.IssueBody = strings.Repeat("ệ", 20)

	instruction := formatter.Instruction(record)
	assert.True(t, utf8.ValidString(instruction))
	assert.Contains(t, instruction, "... (truncated)")
}

func TestFormatter_Response(t *testing.T) {
	t.Parallel()

	formatter := NewFormatter(testLogger(t), 2, 3000)

	record := sampleRecord(0)
	assert.Equal(t, "There was no discussion on this issue.", formatter.Response(record))

	record.Comments = []model.CommentRecord{
		{Author: "bob", Body: "try again"},
		{Author: "carol", Body: "works now"},
	}
	response := formatter.Response(record)
	assert.Contains(t, response, "The issue was addressed with the following discussion:")
	assert.Contains(t, response, "User 'bob' said:\n---\ntry again\n---")
	assert.Contains(t, response, "User 'carol' said:")
}

func TestFormatter_RunFiltersAndFormats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "raw.jsonl")
	outputPath := filepath.Join(dir, "pairs.jsonl")

	lines := make([]string, 0, 3)
	for _, record := range []*model.IssueRecord{sampleRecord(3), sampleRecord(1), sampleRecord(2)} {
		data, err := json.Marshal(record)
		require.NoError(t, err)
		lines = append(lines, string(data))
	}
	lines = append(lines, "not json at all")
	require.NoError(t, os.WriteFile(inputPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	formatter := NewFormatter(testLogger(t), 2, 3000)
	processed, skipped, err := formatter.Run(inputPath, outputPath)
	require.NoError(t, err)

	// Một bản ghi dưới ngưỡng comment và một dòng hỏng bị loại
	assert.Equal(t, 2, processed)
	assert.Equal(t, 2, skipped)

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		pair := TrainingPair{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &pair))
		assert.NotEmpty(t, pair.Instruction)
		assert.NotEmpty(t, pair.Response)
		count++
	}
	assert.Equal(t, 2, count)
}
