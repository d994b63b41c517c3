// Crawler version 2
// Chạy song song theo repository bằng worker pool có giới hạn. Budget rate limit
// được chia sẻ qua mutex, mọi worker đều bị chặn khi quota sắp cạn. Ghi file
// được serialize qua một goroutine writer duy nhất.

package crawler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thep200/issue-crawler/cfg"
	crawlinfo "github.com/thep200/issue-crawler/internal/crawl_info"
	"github.com/thep200/issue-crawler/internal/model"
	"github.com/thep200/issue-crawler/internal/store"
	kafkapkg "github.com/thep200/issue-crawler/pkg/kafka"
	"github.com/thep200/issue-crawler/pkg/log"
)

type CrawlerV2 struct {
	Logger   log.Logger
	Config   *cfg.Config
	deps     *crawlDeps
	producer *kafkapkg.Producer
	workers  int
}

// appendRequest là một yêu cầu ghi gửi tới goroutine writer duy nhất
type appendRequest struct {
	record *model.IssueRecord
	errCh  chan error
}

func NewCrawlerV2(logger log.Logger, config *cfg.Config) (*CrawlerV2, error) {
	if config.GithubApi.AccessToken == "" {
		return nil, ErrMissingToken
	}

	workers := config.Crawler.Workers
	if workers <= 0 {
		workers = 3
	}

	var producer *kafkapkg.Producer
	if len(config.Kafka.Brokers) > 0 && config.Kafka.Producer.TopicIssue != "" {
		producer = kafkapkg.NewProducer(config, logger, config.Kafka.Producer.TopicIssue)
	}

	return &CrawlerV2{
		Logger:   logger,
		Config:   config,
		deps:     newCrawlDeps(logger, config),
		producer: producer,
		workers:  workers,
	}, nil
}

func (c *CrawlerV2) Crawl() bool {
	ctx := context.Background()
	startTime := time.Now()
	c.Logger.Info(ctx, "Bắt đầu crawl issue GitHub (song song, %d worker) vào %s",
		c.workers, startTime.Format(time.RFC3339))

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

	// Một goroutine writer duy nhất giữ thứ tự append và không cần khóa file
	appendCh := make(chan appendRequest)
	var writerWg sync.WaitGroup
	writerWg.Add(1)
	go func() {
		defer writerWg.Done()
		for req := range appendCh {
			err := writer.Append(req.record)
			if err == nil && c.producer != nil {
				if pubErr := c.producer.Publish(ctx, req.record.Repo, model.NewIssueMessage(req.record)); pubErr != nil {
					c.Logger.Warn(ctx, "Không thể publish bản ghi %s tới Kafka: %v", req.record.Key(), pubErr)
				}
			}
			req.errCh <- err
		}
	}()

	appendViaWriter := func(record *model.IssueRecord) error {
		req := appendRequest{record: record, errCh: make(chan error, 1)}
		appendCh <- req
		return <-req.errCh
	}

	summary := &crawlinfo.Summary{StartedAt: startTime}
	var summaryMu sync.Mutex
	var failed int32

	jobs := make(chan cfg.Target)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range jobs {
				info, err := crawlRepo(ctx, c.deps, target, ledger, appendViaWriter)

				summaryMu.Lock()
				summary.Repos = append(summary.Repos, info)
				summaryMu.Unlock()

				if err != nil {
					c.Logger.Error(ctx, "Crawl %s thất bại: %v", target.Repo, err)
					atomic.StoreInt32(&failed, 1)
				}
			}
		}()
	}

	for _, target := range c.Config.Crawler.Targets {
		existing := ledger.Count(target.Repo)
		if existing >= c.Config.Crawler.MaxIssuesPerRepo {
			c.Logger.Info(ctx, "Bỏ qua %s: đã có %d bản ghi (mục tiêu %d)",
				target.Repo, existing, c.Config.Crawler.MaxIssuesPerRepo)
			continue
		}
		jobs <- target
	}
	close(jobs)
	wg.Wait()

	close(appendCh)
	writerWg.Wait()

	summary.FinishedAt = time.Now()
	c.Logger.Info(ctx, "==== KẾT QUẢ CRAWL ====")
	c.Logger.Info(ctx, "Tổng thời gian thực hiện: %v", summary.FinishedAt.Sub(summary.StartedAt))
	for _, info := range summary.Repos {
		c.Logger.Info(ctx, "%s: %d bản ghi mới, %d bỏ qua, %d degraded",
			info.Repo, info.Collected, info.Skipped, info.Degraded)
	}
	c.Logger.Info(ctx, "Tổng số issue đã thu thập: %d", summary.TotalCollected())

	return atomic.LoadInt32(&failed) == 0
}
