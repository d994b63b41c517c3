package model

import "fmt"

// Trạng thái lấy comment của một bản ghi. Degraded nghĩa là lần gọi comments
// thất bại và danh sách comment rỗng không đồng nghĩa issue không có thảo luận.
const (
	CommentsFetchOk       = "ok"
	CommentsFetchDegraded = "degraded"
)

// CommentRecord là một comment đã chuẩn hóa, chỉ giữ comment có nội dung
type CommentRecord struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

// IssueRecord là đơn vị được ghi vào output store, một bản ghi trên một dòng JSONL.
// Tên trường giữ nguyên format lịch sử của dataset.
type IssueRecord struct {
	Repo                string          `json:"repo"`
	IssueNumber         int             `json:"issue_number"`
	IssueUrl            string          `json:"issue_url"`
	IssueTitle          string          `json:"issue_title"`
	IssueAuthor         string          `json:"issue_author"`
	IssueBody           string          `json:"issue_body"`
	IssueLabels         []string        `json:"issue_labels"`
	Comments            []CommentRecord `json:"comments"`
	CommentsFetchStatus string          `json:"comments_fetch_status"`
}

// Key định danh duy nhất một issue trong ledger
func (r *IssueRecord) Key() string {
	return IssueKey(r.Repo, r.IssueNumber)
}

func IssueKey(repo string, number int) string {
	return fmt.Sprintf("%s#%d", repo, number)
}
