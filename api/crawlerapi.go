// Package api cung cấp các API public để tương tác với issue crawler
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/internal/crawler"
	"github.com/thep200/issue-crawler/pkg/log"
)

// CrawlStats chứa thống kê về quá trình crawling
type CrawlStats struct {
	Version   string    `json:"version"`
	IsRunning bool      `json:"isRunning"`
	StartTime time.Time `json:"startTime"`
	Duration  string    `json:"duration"`
	LastError string    `json:"lastError"`
}

// CrawlerAPI cung cấp các API để nhúng crawler vào chương trình khác
type CrawlerAPI struct {
	ctx          context.Context
	config       *cfg.Config
	logger       log.Logger
	crawling     bool
	crawlStatsMu sync.RWMutex
	crawlStats   *CrawlStats
}

// NewCrawlerAPI tạo một instance mới của CrawlerAPI
func NewCrawlerAPI() *CrawlerAPI {
	return &CrawlerAPI{
		crawlStats: &CrawlStats{},
	}
}

// Initialize khởi tạo các thành phần cần thiết cho crawler
func (a *CrawlerAPI) Initialize(ctx context.Context, loader cfg.Loader) error {
	a.ctx = ctx

	var err error
	a.logger, err = log.NewCslLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.config, err = loader.Load()
	if err != nil {
		a.logger.Error(a.ctx, "Failed to load configuration: %v", err)
		return err
	}

	return nil
}

// StartCrawling bắt đầu quá trình crawling với phiên bản được cấu hình
func (a *CrawlerAPI) StartCrawling() (string, error) {
	if a.config == nil {
		return "", errors.New("crawler api is not initialized")
	}

	a.crawlStatsMu.RLock()
	isCrawling := a.crawling
	a.crawlStatsMu.RUnlock()

	if isCrawling {
		return "Crawling is already in progress", nil
	}

	version := a.config.Crawler.Version
	selectedCrawler, err := crawler.FactoryCrawler(version, a.logger, a.config)
	if err != nil {
		return "", err
	}

	a.crawlStatsMu.Lock()
	a.crawling = true
	a.crawlStats = &CrawlStats{
		Version:   version,
		IsRunning: true,
		StartTime: time.Now(),
	}
	a.crawlStatsMu.Unlock()

	// Start crawling in a goroutine
	go func(c crawler.Crawler) {
		success := c.Crawl()

		a.updateCrawlStats(func(stats *CrawlStats) {
			stats.IsRunning = false
			if !success {
				stats.LastError = "Crawling failed"
			}
		})

		a.crawlStatsMu.Lock()
		a.crawling = false
		a.crawlStatsMu.Unlock()
	}(selectedCrawler)

	return "Started crawling with version " + version, nil
}

// GetCrawlStats trả về thống kê về quá trình crawling
func (a *CrawlerAPI) GetCrawlStats() (*CrawlStats, error) {
	a.crawlStatsMu.RLock()
	defer a.crawlStatsMu.RUnlock()

	if a.crawlStats == nil {
		return &CrawlStats{}, nil
	}

	// Calculate duration if crawling is running
	stats := *a.crawlStats
	if stats.IsRunning {
		stats.Duration = time.Since(stats.StartTime).String()
	}

	return &stats, nil
}

// updateCrawlStats cập nhật thống kê về quá trình crawling một cách an toàn
func (a *CrawlerAPI) updateCrawlStats(updateFn func(*CrawlStats)) {
	a.crawlStatsMu.Lock()
	defer a.crawlStatsMu.Unlock()

	if a.crawlStats == nil {
		a.crawlStats = &CrawlStats{}
	}

	updateFn(a.crawlStats)
}
