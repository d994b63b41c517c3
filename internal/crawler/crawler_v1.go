// Crawler version 1
// Crawler tuần tự: một luồng request duy nhất nên kế toán rate limit từ một
// snapshot dùng chung luôn chính xác mà không cần khóa gì thêm

package crawler

import (
	"context"
	"time"

	"github.com/thep200/issue-crawler/cfg"
	crawlinfo "github.com/thep200/issue-crawler/internal/crawl_info"
	"github.com/thep200/issue-crawler/internal/model"
	"github.com/thep200/issue-crawler/internal/store"
	kafkapkg "github.com/thep200/issue-crawler/pkg/kafka"
	"github.com/thep200/issue-crawler/pkg/log"
)

type CrawlerV1 struct {
	Logger   log.Logger
	Config   *cfg.Config
	deps     *crawlDeps
	producer *kafkapkg.Producer
}

func NewCrawlerV1(logger log.Logger, config *cfg.Config) (*CrawlerV1, error) {
	// Thiếu token là lỗi tiền điều kiện, từ chối chạy trước khi có network call
	if config.GithubApi.AccessToken == "" {
		return nil, ErrMissingToken
	}

	var producer *kafkapkg.Producer
	if len(config.Kafka.Brokers) > 0 && config.Kafka.Producer.TopicIssue != "" {
		producer = kafkapkg.NewProducer(config, logger, config.Kafka.Producer.TopicIssue)
	}

	return &CrawlerV1{
		Logger:   logger,
		Config:   config,
		deps:     newCrawlDeps(logger, config),
		producer: producer,
	}, nil
}

func (c *CrawlerV1) Crawl() bool {
	ctx := context.Background()
	startTime := time.Now()
	c.Logger.Info(ctx, "Bắt đầu crawl issue GitHub vào %s", startTime.Format(time.RFC3339))

	// Dựng lại trạng thái resume từ output store hiện có
	ledger, err := store.ScanLedger(c.Logger, c.Config.Crawler.OutputPath)
	if err != nil {
		c.Logger.Error(ctx, "Không thể đọc output store: %v", err)
		return false
	}

	writer, err := store.NewWriter(c.Logger, c.Config.Crawler.OutputPath)
	if err != nil {
		c.Logger.Error(ctx, "Không thể mở output store: %v", err)
		return false
	}
	defer writer.Close()

	summary := &crawlinfo.Summary{StartedAt: startTime}
	succeeded := true

	for _, target := range c.Config.Crawler.Targets {
		existing := ledger.Count(target.Repo)
		if existing >= c.Config.Crawler.MaxIssuesPerRepo {
			c.Logger.Info(ctx, "Bỏ qua %s: đã có %d bản ghi (mục tiêu %d)",
				target.Repo, existing, c.Config.Crawler.MaxIssuesPerRepo)
			continue
		}

		info, err := crawlRepo(ctx, c.deps, target, ledger, c.persist(ctx, writer))
		summary.Repos = append(summary.Repos, info)
		if err != nil {
			// Một repo hỏng không chặn các repo còn lại
			c.Logger.Error(ctx, "Crawl %s thất bại: %v", target.Repo, err)
			succeeded = false
			continue
		}
	}

	summary.FinishedAt = time.Now()
	c.logSummary(ctx, summary)
	return succeeded
}

// persist ghi bản ghi xuống JSONL và publish sang Kafka nếu được cấu hình.
// JSONL là nguồn sự thật: lỗi Kafka chỉ là warning, lỗi ghi file là lỗi thật.
func (c *CrawlerV1) persist(ctx context.Context, writer *store.Writer) appendFunc {
	return func(record *model.IssueRecord) error {
		if err := writer.Append(record); err != nil {
			return err
		}
		if c.producer != nil {
			if err := c.producer.Publish(ctx, record.Repo, model.NewIssueMessage(record)); err != nil {
				c.Logger.Warn(ctx, "Không thể publish bản ghi %s tới Kafka: %v", record.Key(), err)
			}
		}
		return nil
	}
}

func (c *CrawlerV1) logSummary(ctx context.Context, summary *crawlinfo.Summary) {
	c.Logger.Info(ctx, "==== KẾT QUẢ CRAWL ====")
	c.Logger.Info(ctx, "Thời gian bắt đầu: %s", summary.StartedAt.Format(time.RFC3339))
	c.Logger.Info(ctx, "Thời gian kết thúc: %s", summary.FinishedAt.Format(time.RFC3339))
	c.Logger.Info(ctx, "Tổng thời gian thực hiện: %v", summary.FinishedAt.Sub(summary.StartedAt))
	for _, info := range summary.Repos {
		c.Logger.Info(ctx, "%s: %d bản ghi mới, %d bỏ qua, %d degraded",
			info.Repo, info.Collected, info.Skipped, info.Degraded)
	}
	c.Logger.Info(ctx, "Tổng số issue đã thu thập: %d", summary.TotalCollected())
}
