// Gói dataset biến corpus JSONL thô thành dữ liệu huấn luyện: cặp
// instruction/response cho fine-tuning và golden set cho đánh giá thủ công.

package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/thep200/issue-crawler/internal/model"
	"github.com/thep200/issue-crawler/pkg/log"
)

// TrainingPair là một ví dụ fine-tuning
type TrainingPair struct {
	Instruction string `json:"instruction"`
	Response    string `json:"response"`
}

type Formatter struct {
	Logger        log.Logger
	MinComments   int
	MaxBodyLength int
}

func NewFormatter(logger log.Logger, minComments, maxBodyLength int) *Formatter {
	if minComments <= 0 {
		minComments = 2
	}
	if maxBodyLength <= 0 {
		maxBodyLength = 3000
	}
	return &Formatter{
		Logger:        logger,
		MinComments:   minComments,
		MaxBodyLength: maxBodyLength,
	}
}

// Instruction dựng phần đề bài từ một bản ghi, cắt body quá dài
func (f *Formatter) Instruction(record *model.IssueRecord) string {
	title := strings.TrimSpace(record.IssueTitle)
	body := strings.TrimSpace(record.IssueBody)

	if len(body) > f.MaxBodyLength {
		body = model.TruncateString(body, f.MaxBodyLength) + "\n... (truncated)"
	}

	return fmt.Sprintf(
		"A user reported the following issue titled '%s' in the '%s' repository. "+
			"Please provide a summary of the discussion that led to its resolution.\n\n"+
			"ISSUE DESCRIPTION:\n%s",
		title, record.Repo, body)
}

// Response dựng phần lời giải từ thread comment
func (f *Formatter) Response(record *model.IssueRecord) string {
	if len(record.Comments) == 0 {
		return "There was no discussion on this issue."
	}

	parts := make([]string, 0, len(record.Comments))
	for _, comment := range record.Comments {
		body := strings.TrimSpace(comment.Body)
		if body == "" {
			continue
		}
		author := comment.Author
		if author == "" {
			author = "unknown_user"
		}
		parts = append(parts, fmt.Sprintf("User '%s' said:\n---\n%s\n---", author, body))
	}

	return "The issue was addressed with the following discussion:\n\n" + strings.Join(parts, "\n\n")
}

// Run đọc corpus JSONL và ghi dataset fine-tuning, trả về số bản ghi đã
// xử lý và số bản ghi bị loại
func (f *Formatter) Run(inputPath, outputPath string) (int, int, error) {
	ctx := context.Background()

	in, err := os.Open(inputPath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	writer := bufio.NewWriter(out)
	defer writer.Flush()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	processed := 0
	skipped := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		record := &model.IssueRecord{}
		if err := json.Unmarshal(line, record); err != nil {
			f.Logger.Warn(ctx, "Bỏ qua dòng không hợp lệ trong %s", inputPath)
			skipped++
			continue
		}

		// Issue ít thảo luận thì không đủ thông tin để huấn luyện
		if len(record.Comments) < f.MinComments {
			skipped++
			continue
		}

		pair := TrainingPair{
			Instruction: f.Instruction(record),
			Response:    f.Response(record),
		}

		data, err := json.Marshal(pair)
		if err != nil {
			skipped++
			continue
		}
		if _, err := writer.Write(append(data, '\n')); err != nil {
			return processed, skipped, fmt.Errorf("failed to write training pair: %w", err)
		}
		processed++
	}

	if err := scanner.Err(); err != nil {
		return processed, skipped, err
	}

	return processed, skipped, nil
}
