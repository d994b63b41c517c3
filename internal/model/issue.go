package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/pkg/db"
	"github.com/thep200/issue-crawler/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Issue là bản mirror MySQL của một IssueRecord, dùng cho truy vấn ad-hoc.
// File JSONL vẫn là nguồn sự thật cho resume, bảng này chỉ là sink phụ.
type Issue struct {
	Model
	Repo        string    `json:"repo" gorm:"column:repo;type:varchar(255);not null;uniqueIndex:idx_repo_issue,priority:1"`
	IssueNumber int       `json:"issue_number" gorm:"column:issue_number;not null;uniqueIndex:idx_repo_issue,priority:2"`
	Url         string    `json:"url" gorm:"column:url;type:varchar(512)"`
	Title       string    `json:"title" gorm:"column:title;type:varchar(1024)"`
	Author      string    `json:"author" gorm:"column:author;type:varchar(255)"`
	Body        string    `json:"body" gorm:"column:body;type:longtext"`
	Labels      string    `json:"labels" gorm:"column:labels;type:text"`
	FetchStatus string    `json:"fetch_status" gorm:"column:fetch_status;type:varchar(16);default:ok"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewIssue(config *cfg.Config, logger log.Logger, mysql *db.Mysql) (*Issue, error) {
	issue := &Issue{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  mysql,
		},
	}
	return issue, nil
}

func (i *Issue) TableName() string {
	return "issues"
}

// CreateBatch upsert một lô issue theo khóa (repo, issue_number)
func (i *Issue) CreateBatch(messages []IssueMessage) error {
	database, err := i.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	issues := make([]Issue, 0, len(messages))
	now := time.Now()

	for _, msg := range messages {
		labels, err := json.Marshal(msg.IssueLabels)
		if err != nil {
			labels = []byte("[]")
		}

		issue := Issue{
			Repo:        TruncateString(msg.Repo, 250),
			IssueNumber: msg.IssueNumber,
			Url:         TruncateString(msg.IssueUrl, 500),
			Title:       TruncateString(msg.IssueTitle, 1000),
			Author:      TruncateString(msg.IssueAuthor, 250),
			Body:        TruncateString(msg.IssueBody, 65000),
			Labels:      string(labels),
			FetchStatus: msg.CommentsFetchStatus,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		issues = append(issues, issue)
	}

	return database.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "repo"}, {Name: "issue_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "body", "labels", "fetch_status", "updated_at"}),
		}).CreateInBatches(issues, 100)

		if result.Error != nil {
			return fmt.Errorf("failed to batch create issues: %w", result.Error)
		}

		return nil
	})
}
