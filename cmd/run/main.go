package main

import (
	"context"
	"errors"
	"os"

	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/internal/crawler"
	"github.com/thep200/issue-crawler/pkg/log"
)

func main() {
	ctx := context.Background()
	logger, _ := log.NewCslLogger()

	// loader, _ := cfg.NewMockLoader()
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		logger.Error(ctx, "Failed to load config: %v", err)
		os.Exit(1)
	}

	c, err := crawler.FactoryCrawler(config.Crawler.Version, logger, config)
	if err != nil {
		if errors.Is(err, crawler.ErrMissingToken) {
			logger.Error(ctx, "GITHUB_TOKEN is not set. Refusing to start the crawl.")
		} else {
			logger.Error(ctx, "Failed to create crawler: %v", err)
		}
		os.Exit(1)
	}

	logger.Info(ctx, "Starting GitHub issue crawler")
	if c.Crawl() {
		logger.Info(ctx, "Successfully!")
	} else {
		logger.Error(ctx, "Failed!")
		os.Exit(1)
	}
}
