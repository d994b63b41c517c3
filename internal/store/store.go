// Gói store quản lý output store dạng JSONL: một IssueRecord trên một dòng,
// chỉ append, không bao giờ ghi đè. File này đồng thời là ledger để resume.

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/thep200/issue-crawler/internal/model"
	"github.com/thep200/issue-crawler/pkg/log"
)

type Writer struct {
	Logger log.Logger
	mu     sync.Mutex
	file   *os.File
}

// NewWriter mở file output ở chế độ append, tạo mới nếu chưa tồn tại
func NewWriter(logger log.Logger, path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output store: %w", err)
	}

	return &Writer{
		Logger: logger,
		file:   file,
	}, nil
}

// Append ghi một bản ghi và sync xuống đĩa ngay để ngắt tiến trình
// ở bất kỳ thời điểm nào cũng an toàn cho lần resume sau
func (w *Writer) Append(record *model.IssueRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", record.Key(), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append record %s: %w", record.Key(), err)
	}
	return w.file.Sync()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
