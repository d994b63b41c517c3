package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/internal/model"
	"github.com/thep200/issue-crawler/pkg/db"
	"github.com/thep200/issue-crawler/pkg/kafka"
	"github.com/thep200/issue-crawler/pkg/log"
)

func main() {
	// Load configuration
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, _ := log.NewCslLogger()

	// Setup database
	mysql, _ := db.NewMysql(config)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create models and migrate
	issueModel, _ := model.NewIssue(config, logger, mysql)
	commentModel, _ := model.NewComment(config, logger, mysql)
	if err := mysql.Migrate(issueModel, commentModel); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	startIssueConsumer(ctx, config, logger, issueModel, commentModel)

	// Wait for termination signal
	<-sigCh
	logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
	cancel()
}

func startIssueConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, issueModel *model.Issue, commentModel *model.Comment) {
	consumer := kafka.NewConsumer(config, logger, config.Kafka.Producer.TopicIssue, "issue-consumer-group")

	// Channel for collecting messages in batches
	batchSize := 100
	batchTimeout := 5 * time.Second
	messages := make(chan model.IssueMessage, batchSize*2)

	// Batch processor
	go processBatchedIssues(ctx, messages, batchSize, batchTimeout, logger, issueModel, commentModel)

	// Start consumer in a goroutine
	go func() {
		err := consumer.Start(ctx, func(key string, value []byte) error {
			var issueMsg model.IssueMessage
			if err := json.Unmarshal(value, &issueMsg); err != nil {
				return fmt.Errorf("failed to unmarshal issue message: %w", err)
			}

			select {
			case messages <- issueMsg:
				// Message added to batch
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			logger.Error(ctx, "Issue consumer error: %v", err)
		}
	}()

	logger.Info(ctx, "Issue consumer started successfully")
}

// processBatchedIssues gom message thành lô rồi upsert vào MySQL
func processBatchedIssues(ctx context.Context, messages <-chan model.IssueMessage, batchSize int,
	batchTimeout time.Duration, logger log.Logger, issueModel *model.Issue, commentModel *model.Comment) {

	var batch []model.IssueMessage
	timer := time.NewTimer(batchTimeout)

	for {
		select {
		case <-ctx.Done():
			// Process remaining messages before exiting
			if len(batch) > 0 {
				processSingleBatch(ctx, batch, logger, issueModel, commentModel)
			}
			return

		case msg := <-messages:
			batch = append(batch, msg)

			if len(batch) >= batchSize {
				processSingleBatch(ctx, batch, logger, issueModel, commentModel)
				batch = nil // Reset batch
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				processSingleBatch(ctx, batch, logger, issueModel, commentModel)
				batch = nil
			}
			timer.Reset(batchTimeout)
		}
	}
}

// processSingleBatch ghi một lô issue và comment của chúng
func processSingleBatch(ctx context.Context, batch []model.IssueMessage, logger log.Logger, issueModel *model.Issue, commentModel *model.Comment) {
	if len(batch) == 0 {
		return
	}

	logger.Info(ctx, "Processing batch of %d issues", len(batch))

	if err := issueModel.CreateBatch(batch); err != nil {
		logger.Error(ctx, "Failed to save batch of issues: %v", err)
		return
	}
	if err := commentModel.CreateBatch(batch); err != nil {
		logger.Error(ctx, "Failed to save batch of comments: %v", err)
		return
	}

	logger.Info(ctx, "Successfully saved batch of %d issues", len(batch))
}
