package model

// IssueMessage là cấu trúc dữ liệu IssueRecord gửi tới Kafka cho consumer mirror
type IssueMessage struct {
	Repo                string           `json:"repo"`
	IssueNumber         int              `json:"issue_number"`
	IssueUrl            string           `json:"issue_url"`
	IssueTitle          string           `json:"issue_title"`
	IssueAuthor         string           `json:"issue_author"`
	IssueBody           string           `json:"issue_body"`
	IssueLabels         []string         `json:"issue_labels"`
	Comments            []CommentMessage `json:"comments"`
	CommentsFetchStatus string           `json:"comments_fetch_status"`
}

// CommentMessage là một comment trong IssueMessage
type CommentMessage struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

// NewIssueMessage chuyển một IssueRecord thành message gửi Kafka
func NewIssueMessage(record *IssueRecord) IssueMessage {
	comments := make([]CommentMessage, 0, len(record.Comments))
	for _, c := range record.Comments {
		comments = append(comments, CommentMessage{Author: c.Author, Body: c.Body})
	}
	return IssueMessage{
		Repo:                record.Repo,
		IssueNumber:         record.IssueNumber,
		IssueUrl:            record.IssueUrl,
		IssueTitle:          record.IssueTitle,
		IssueAuthor:         record.IssueAuthor,
		IssueBody:           record.IssueBody,
		IssueLabels:         record.IssueLabels,
		Comments:            comments,
		CommentsFetchStatus: record.CommentsFetchStatus,
	}
}
