// Gói dto cung cấp các đối tượng truyền dữ liệu cho dự án
// Chuyển đổi phản hồi api tìm kiếm issue của github thành một cấu trúc

package githubapi

type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

type Label struct {
	Name string `json:"name"`
}

type IssueResponse struct {
	Number      int     `json:"number"`
	Title       string  `json:"title"`
	HtmlUrl     string  `json:"html_url"`
	Body        string  `json:"body"`
	User        User    `json:"user"`
	Labels      []Label `json:"labels"`
	CommentsUrl string  `json:"comments_url"`
	// Có thể thêm nhiều trường tại đây
}

type CommentResponse struct {
	User User   `json:"user"`
	Body string `json:"body"`
}
