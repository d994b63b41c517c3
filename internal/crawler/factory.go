package crawler

import (
	"fmt"

	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/pkg/log"
)

func FactoryCrawler(version string, logger log.Logger, config *cfg.Config) (Crawler, error) {
	switch version {
	case "v1", "":
		return NewCrawlerV1(logger, config)
	case "v2":
		return NewCrawlerV2(logger, config)
	default:
		return nil, fmt.Errorf("[ERROR] Unsupported crawler version: %s", version)
	}
}
