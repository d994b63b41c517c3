// Gói crawler thu thập issue đã đóng theo label từ nhiều repository GitHub,
// ghi từng bản ghi xuống output store dạng JSONL và có thể resume an toàn
// sau khi bị ngắt giữa chừng.

package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thep200/issue-crawler/cfg"
	crawlinfo "github.com/thep200/issue-crawler/internal/crawl_info"
	githubapi "github.com/thep200/issue-crawler/internal/github_api"
	"github.com/thep200/issue-crawler/internal/limiter"
	"github.com/thep200/issue-crawler/internal/model"
	"github.com/thep200/issue-crawler/internal/store"
	"github.com/thep200/issue-crawler/pkg/log"
)

type Crawler interface {
	Crawl() bool
}

// appendFunc ghi một bản ghi đã hoàn chỉnh xuống output store
type appendFunc func(record *model.IssueRecord) error

// crawlDeps là các phụ thuộc dùng chung giữa các phiên bản crawler
type crawlDeps struct {
	logger log.Logger
	config *cfg.Config
	caller *githubapi.Caller
	budget *limiter.Budget
	rate   *limiter.RateLimiter
	sleep  func(time.Duration)
}

func newCrawlDeps(logger log.Logger, config *cfg.Config) *crawlDeps {
	floor := config.GithubApi.RateLimitFloor
	if floor <= 0 {
		floor = 20
	}
	margin := time.Duration(config.GithubApi.SafetyMarginSec) * time.Second

	requestsPerSecond := config.GithubApi.RequestsPerSecond
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}

	return &crawlDeps{
		logger: logger,
		config: config,
		caller: githubapi.NewCaller(logger, config),
		budget: limiter.NewBudget(logger, floor, margin),
		rate:   limiter.NewRateLimiter(requestsPerSecond),
		sleep:  time.Sleep,
	}
}

func (d *crawlDeps) throttle() time.Duration {
	return time.Duration(d.config.GithubApi.ThrottleDelay) * time.Millisecond
}

// crawlRepo xử lý tuần tự một repository: phân trang kết quả tìm kiếm, bỏ qua
// issue đã có trong ledger, lấy thread comment của từng issue mới và append
// bản ghi. Lỗi trang được retry với backoff lũy tiến có trần, vượt trần thì
// trả về ErrRetryExhausted và bỏ dở repository.
func crawlRepo(ctx context.Context, deps *crawlDeps, target cfg.Target, ledger *store.Ledger, appendRecord appendFunc) (crawlinfo.RepoInfo, error) {
	info := crawlinfo.RepoInfo{Repo: target.Repo}
	quota := deps.config.Crawler.MaxIssuesPerRepo
	collected := ledger.Count(target.Repo)

	deps.logger.Info(ctx, "Bắt đầu crawl %s: đã có %d/%d bản ghi", target.Repo, collected, quota)

	walker := newPageWalker(deps, target.Repo, target.Labels, quota)
	politeness := time.Duration(deps.config.Crawler.PolitenessDelayMs) * time.Millisecond

	maxRetries := deps.config.Crawler.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	backoffBase := time.Duration(deps.config.Crawler.RetryBaseDelaySec) * time.Second
	backoffMax := time.Duration(deps.config.Crawler.RetryMaxDelaySec) * time.Second
	if backoffMax < backoffBase {
		backoffMax = backoffBase
	}

	attempts := 0
	backoff := backoffBase

	for collected < quota {
		items, ok, err := walker.Next(ctx)
		if err != nil {
			var retryable *githubapi.RetryableFetchError
			if !errors.As(err, &retryable) {
				return info, err
			}

			attempts++
			if attempts >= maxRetries {
				return info, fmt.Errorf("%w: %s: %v", ErrRetryExhausted, target.Repo, err)
			}

			deps.logger.Warn(ctx, "Lỗi khi lấy trang của %s (lần %d/%d): %v. Thử lại sau %v",
				target.Repo, attempts, maxRetries, err, backoff)
			deps.sleep(backoff)
			backoff *= 2
			if backoff > backoffMax {
				backoff = backoffMax
			}
			continue
		}

		// Trang thành công thì reset bộ đếm retry
		attempts = 0
		backoff = backoffBase

		if !ok {
			break
		}

		for _, item := range items {
			if collected >= quota {
				break
			}

			// Resume theo từng issue: đã ghi rồi thì không ghi lại
			if ledger.Seen(target.Repo, item.Number) {
				info.Skipped++
				continue
			}

			deps.logger.Info(ctx, "Xử lý issue #%d: %s", item.Number, model.TruncateString(item.Title, 50))
			comments, status := fetchComments(ctx, deps, item.CommentsUrl)

			labels := make([]string, 0, len(item.Labels))
			for _, label := range item.Labels {
				labels = append(labels, label.Name)
			}

			record := &model.IssueRecord{
				Repo:                target.Repo,
				IssueNumber:         item.Number,
				IssueUrl:            item.HtmlUrl,
				IssueTitle:          item.Title,
				IssueAuthor:         item.User.Login,
				IssueBody:           item.Body,
				IssueLabels:         labels,
				Comments:            comments,
				CommentsFetchStatus: status,
			}

			if err := appendRecord(record); err != nil {
				return info, err
			}

			ledger.Mark(target.Repo, item.Number)
			collected++
			info.Collected++
			if status == model.CommentsFetchDegraded {
				info.Degraded++
			}

			// Nghỉ một nhịp giữa các issue
			deps.sleep(politeness)
		}
	}

	deps.logger.Info(ctx, "Hoàn thành %s: %d bản ghi mới, %d bỏ qua, %d degraded",
		target.Repo, info.Collected, info.Skipped, info.Degraded)
	return info, nil
}
