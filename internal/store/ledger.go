package store

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/thep200/issue-crawler/internal/model"
	"github.com/thep200/issue-crawler/pkg/log"
)

// Ledger là trạng thái resume được dựng lại từ output store: số bản ghi đã
// có theo repo và tập (repo, issue_number) đã thấy để bỏ qua từng issue.
type Ledger struct {
	mu     sync.RWMutex
	counts map[string]int
	seen   map[string]bool
}

// ScanLedger đọc toàn bộ output store hiện có. File chưa tồn tại trả về
// ledger rỗng. Dòng không parse được chỉ log warning và bỏ qua.
func ScanLedger(logger log.Logger, path string) (*Ledger, error) {
	ledger := &Ledger{
		counts: make(map[string]int),
		seen:   make(map[string]bool),
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledger, nil
		}
		return nil, err
	}
	defer file.Close()

	ctx := context.Background()
	scanner := bufio.NewScanner(file)

	// Body của issue có thể rất dài nên cần buffer lớn hơn mặc định
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		record := &model.IssueRecord{}
		if err := json.Unmarshal(line, record); err != nil || record.Repo == "" {
			logger.Warn(ctx, "Bỏ qua dòng %d không hợp lệ trong %s", lineNo, path)
			continue
		}

		ledger.counts[record.Repo]++
		ledger.seen[record.Key()] = true
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ledger, nil
}

// Count trả về số bản ghi đã có của một repo
func (l *Ledger) Count(repo string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.counts[repo]
}

// Seen kiểm tra một issue đã được ghi trước đó chưa
func (l *Ledger) Seen(repo string, number int) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seen[model.IssueKey(repo, number)]
}

// Mark ghi nhận một issue vừa được append trong run hiện tại
func (l *Ledger) Mark(repo string, number int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[repo]++
	l.seen[model.IssueKey(repo, number)] = true
}
