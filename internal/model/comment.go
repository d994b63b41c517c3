package model

import (
	"fmt"
	"time"

	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/pkg/db"
	"github.com/thep200/issue-crawler/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Comment là một comment trong thread của issue, giữ thứ tự bằng ordinal
type Comment struct {
	Model
	Repo        string    `json:"repo" gorm:"column:repo;type:varchar(255);not null;uniqueIndex:idx_issue_comment,priority:1"`
	IssueNumber int       `json:"issue_number" gorm:"column:issue_number;not null;uniqueIndex:idx_issue_comment,priority:2"`
	Ordinal     int       `json:"ordinal" gorm:"column:ordinal;not null;uniqueIndex:idx_issue_comment,priority:3"`
	Author      string    `json:"author" gorm:"column:author;type:varchar(255)"`
	Body        string    `json:"body" gorm:"column:body;type:longtext"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewComment(config *cfg.Config, logger log.Logger, mysql *db.Mysql) (*Comment, error) {
	comment := &Comment{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  mysql,
		},
	}
	return comment, nil
}

func (c *Comment) TableName() string {
	return "issue_comments"
}

// CreateBatch upsert toàn bộ comment của một lô IssueMessage
func (c *Comment) CreateBatch(messages []IssueMessage) error {
	database, err := c.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	comments := make([]Comment, 0)
	now := time.Now()

	for _, msg := range messages {
		for ordinal, cm := range msg.Comments {
			comment := Comment{
				Repo:        TruncateString(msg.Repo, 250),
				IssueNumber: msg.IssueNumber,
				Ordinal:     ordinal,
				Author:      TruncateString(cm.Author, 250),
				Body:        TruncateString(cm.Body, 65000),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			comments = append(comments, comment)
		}
	}

	if len(comments) == 0 {
		return nil
	}

	return database.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "repo"}, {Name: "issue_number"}, {Name: "ordinal"}},
			DoUpdates: clause.AssignmentColumns([]string{"author", "body", "updated_at"}),
		}).CreateInBatches(comments, 200)

		if result.Error != nil {
			return fmt.Errorf("failed to batch create comments: %w", result.Error)
		}

		return nil
	})
}
