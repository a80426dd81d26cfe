package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"sportiq/internal/analyzer"
	"sportiq/internal/pkg/cache"
	"sportiq/internal/pkg/config"
	"sportiq/internal/pkg/logging"
	"sportiq/internal/scraper"
)

// fetch-games fetches one sport/date and prints the digest, for
// checking extraction against the live site without a bot roundtrip.
func main() {
	var configPath, sport, date string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&sport, "sport", "basketball", "sport key (basketball, baseball, soccer, hockey, tennis)")
	flag.StringVar(&date, "date", "", "date as YYYYMMDD, empty means today")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			slog.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger, err := logging.SetupLogger(&cfg.Logging, "fetch-games")
	if err != nil {
		slog.Error("failed to setup logger", "error", err)
		os.Exit(1)
	}

	fetcher := scraper.NewFetcher(&cfg.Scraper)
	service := scraper.NewService(&cfg.Scraper, fetcher, cache.NewMemoryCache(cfg.Cache.TTL), logger)

	games, err := service.FetchAll(context.Background(), sport, date)
	if err != nil {
		logger.Error("fetch failed", "sport", sport, "date", date, "error", err)
		os.Exit(1)
	}

	fmt.Println(analyzer.FormatDigest(games, sport, date))
}
