package crawler

import (
	"context"

	githubapi "github.com/thep200/issue-crawler/internal/github_api"
)

// pageWalker đi qua các trang kết quả của search API theo link phân trang.
// Chuỗi trang là lazy, hữu hạn và không restart được: dừng khi gặp trang rỗng,
// khi không còn link next hoặc khi đã lấy đủ số item tối đa.
type pageWalker struct {
	deps      *crawlDeps
	repo      string
	nextUrl   string
	remaining int
	done      bool
}

func newPageWalker(deps *crawlDeps, repo string, labels []string, maxItems int) *pageWalker {
	return &pageWalker{
		deps:      deps,
		repo:      repo,
		nextUrl:   deps.caller.SearchURL(repo, labels),
		remaining: maxItems,
	}
}

// Next trả về trang kế tiếp. ok = false khi chuỗi đã cạn. Khi lỗi, con trỏ
// trang không thay đổi nên caller retry sẽ gọi lại đúng trang vừa thất bại.
func (w *pageWalker) Next(ctx context.Context) ([]githubapi.IssueResponse, bool, error) {
	if w.done || w.remaining <= 0 {
		return nil, false, nil
	}

	w.deps.rate.Block(w.deps.throttle())
	items, next, snapshot, err := w.deps.caller.CallSearch(ctx, w.nextUrl)
	if err != nil {
		return nil, false, err
	}
	w.deps.budget.Gate(ctx, snapshot)

	// Trang rỗng kết thúc chuỗi kể cả khi server vẫn trả link next
	if len(items) == 0 {
		w.done = true
		return nil, false, nil
	}

	if next == "" {
		w.done = true
	} else {
		w.nextUrl = next
	}

	w.remaining -= len(items)
	if w.remaining <= 0 {
		w.done = true
	}

	return items, true, nil
}
