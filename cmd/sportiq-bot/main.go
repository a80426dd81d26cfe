package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sportiq/internal/bot"
	"sportiq/internal/health"
	"sportiq/internal/membership"
	"sportiq/internal/pkg/cache"
	"sportiq/internal/pkg/config"
	"sportiq/internal/pkg/logging"
	"sportiq/internal/pkg/storage"
	"sportiq/internal/scraper"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		configPath = "configs/production.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger, err := logging.SetupLogger(&cfg.Logging, "sportiq-bot")
	if err != nil {
		slog.Error("failed to setup logger", "error", err)
		os.Exit(1)
	}

	if cfg.Bot.Token == "" {
		cfg.Bot.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	}
	if cfg.Bot.Token == "" {
		logger.Error("telegram bot token is required, set bot.token in config or TELEGRAM_BOT_TOKEN env var")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	var store storage.MembershipStore
	if cfg.Membership.PostgresDSN != "" {
		store, err = storage.NewPostgresMembershipStore(cfg.Membership.PostgresDSN)
		if err != nil {
			logger.Error("failed to connect membership storage", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("no postgres_dsn configured, membership state is in-memory only")
		store = storage.NewMemoryMembershipStore()
	}
	defer store.Close()

	var gameCache cache.GameCache
	if cfg.Cache.Backend == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, cfg.Cache.TTL)
		if err != nil {
			logger.Error("failed to connect redis cache", "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		gameCache = redisCache
	} else {
		gameCache = cache.NewMemoryCache(cfg.Cache.TTL)
	}

	fetcher := scraper.NewFetcher(&cfg.Scraper)
	games := scraper.NewService(&cfg.Scraper, fetcher, gameCache, logger)
	members := membership.NewService(store)

	b, err := bot.New(&cfg.Bot, games, members, logger)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	health.Run(ctx, cfg.Health.Port, "sportiq-bot", cfg.Health.ReadHeaderTimeout)

	logger.Info("starting bot")
	b.Run(ctx)
}
