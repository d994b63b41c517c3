package crawler

import (
	"context"

	"github.com/thep200/issue-crawler/internal/model"
)

// fetchComments lấy thread comment của một issue và chỉ giữ comment có nội dung,
// thứ tự giữ nguyên theo response. Lỗi lấy comment không được phép làm hỏng cả
// run: chỉ log warning, trả về danh sách rỗng kèm trạng thái degraded để
// downstream phân biệt được "không có comment" với "lấy comment thất bại".
func fetchComments(ctx context.Context, deps *crawlDeps, commentsUrl string) ([]model.CommentRecord, string) {
	if commentsUrl == "" {
		return []model.CommentRecord{}, model.CommentsFetchOk
	}

	deps.rate.Block(deps.throttle())
	raw, snapshot, err := deps.caller.CallComments(ctx, commentsUrl)
	if err != nil {
		deps.logger.Warn(ctx, "Không thể lấy comments từ %s: %v", commentsUrl, err)
		return []model.CommentRecord{}, model.CommentsFetchDegraded
	}
	deps.budget.Gate(ctx, snapshot)

	comments := make([]model.CommentRecord, 0, len(raw))
	for _, comment := range raw {
		if comment.Body == "" {
			continue
		}
		comments = append(comments, model.CommentRecord{
			Author: comment.User.Login,
			Body:   comment.Body,
		})
	}

	return comments, model.CommentsFetchOk
}
