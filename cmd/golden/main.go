package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/thep200/issue-crawler/cfg"
	"github.com/thep200/issue-crawler/internal/dataset"
	"github.com/thep200/issue-crawler/pkg/log"
)

func main() {
	input := flag.String("in", "fine_tuning_dataset.jsonl", "Path to the fine-tuning dataset")
	output := flag.String("out", "natural_golden_dataset.json", "Path to write the golden set")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed for sampling and question templates")
	flag.Parse()

	ctx := context.Background()
	logger, _ := log.NewCslLogger()

	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		logger.Error(ctx, "Failed to load config: %v", err)
		os.Exit(1)
	}

	golden := dataset.NewGolden(logger, config.Dataset.GoldenSamples, *seed)
	count, err := golden.Run(*input, *output)
	if err != nil {
		logger.Error(ctx, "Failed to build golden set: %v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Successfully created %s with %d entries", *output, count)
}
