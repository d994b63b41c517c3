package main

import (
	"context"
	"flag"
	"os"

	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/internal/dataset"
	"github.com/thep200/issue-crawler/pkg/log"
)

func main() {
	input := flag.String("in", "", "Path to the raw issue corpus (default: crawler output path)")
	output := flag.String("out", "fine_tuning_dataset.jsonl", "Path to write the fine-tuning dataset")
	flag.Parse()

	ctx := context.Background()
	logger, _ := log.NewCslLogger()

	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		logger.Error(ctx, "Failed to load config: %v", err)
		os.Exit(1)
	}

	inputPath := *input
	if inputPath == "" {
		inputPath = config.Crawler.OutputPath
	}

	formatter := dataset.NewFormatter(logger, config.Dataset.MinComments, config.Dataset.MaxBodyLength)
	processed, skipped, err := formatter.Run(inputPath, *output)
	if err != nil {
		logger.Error(ctx, "Failed to format dataset: %v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Successfully processed and formatted: %d records", processed)
	logger.Info(ctx, "Skipped (due to not meeting criteria): %d records", skipped)
	logger.Info(ctx, "Fine-tuning dataset is ready at: %s", *output)
}
