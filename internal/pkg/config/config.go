package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sportiq/internal/pkg/models"
)

type Config struct {
	Scraper    ScraperConfig    `yaml:"scraper"`
	Cache      CacheConfig      `yaml:"cache"`
	Membership MembershipConfig `yaml:"membership"`
	Bot        BotConfig        `yaml:"bot"`
	Health     HealthConfig     `yaml:"health"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ScraperConfig struct {
	BaseURL   string            `yaml:"base_url"`
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
	Timeout   time.Duration     `yaml:"timeout"`
	// RenderJS switches document fetching to a headless browser for pages
	// that only populate score markers from JavaScript.
	RenderJS bool `yaml:"render_js"`
	// Leagues maps sport key -> ordered league catalog. Empty falls back
	// to the built-in catalog.
	Leagues map[string][]models.League `yaml:"leagues"`
}

type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MembershipConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

type BotConfig struct {
	Token         string `yaml:"token"`
	UpdateTimeout int    `yaml:"update_timeout"`
}

type HealthConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// File enables an additional JSON log sink when non-empty.
	File string `yaml:"file"`
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

// Default returns a config with every default applied, for tools that
// run without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Scraper.BaseURL == "" {
		cfg.Scraper.BaseURL = "https://www.playsport.cc"
	}
	if cfg.Scraper.UserAgent == "" {
		cfg.Scraper.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if cfg.Scraper.Timeout <= 0 {
		cfg.Scraper.Timeout = 15 * time.Second
	}
	if len(cfg.Scraper.Leagues) == 0 {
		cfg.Scraper.Leagues = DefaultLeagues()
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 2 * time.Minute
	}
	if cfg.Bot.UpdateTimeout <= 0 {
		cfg.Bot.UpdateTimeout = 60
	}
	if cfg.Health.ReadHeaderTimeout <= 0 {
		cfg.Health.ReadHeaderTimeout = 5 * time.Second
	}
}

// DefaultLeagues is the built-in playsport.cc league catalog per sport.
func DefaultLeagues() map[string][]models.League {
	return map[string][]models.League{
		"basketball": {
			{ID: "3", Name: "NBA"},
			{ID: "8", Name: "歐洲職籃"},
			{ID: "89", Name: "SBL"},
			{ID: "92", Name: "韓國職籃"},
			{ID: "97", Name: "日本職籃"},
		},
		"baseball": {
			{ID: "1", Name: "MLB"},
			{ID: "2", Name: "日本職棒"},
			{ID: "6", Name: "中華職棒"},
			{ID: "9", Name: "韓國職棒"},
		},
		"soccer": {
			{ID: "4", Name: "足球"},
		},
		"hockey": {
			{ID: "91", Name: "NHL冰球"},
		},
		"tennis": {
			{ID: "21", Name: "網球"},
		},
	}
}

// LeagueName resolves a league id to its display name across all sports.
func LeagueName(leagues map[string][]models.League, leagueID string) string {
	for _, sportLeagues := range leagues {
		for _, l := range sportLeagues {
			if l.ID == leagueID {
				return l.Name
			}
		}
	}
	return "未知聯賽"
}
