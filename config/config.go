package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"offer_manager/models"
)

type Config struct {
	Scraper  ScraperConfig
	Proxy    ProxyConfig
	DBPath   string
	LogPath  string
	LogLevel models.LogLevel
	SitesDir string
	Sites    []*SiteConfig
}

type ScraperConfig struct {
	DelayMS   int
	Timeout   time.Duration
	UserAgent string
}

type ProxyConfig struct {
	URL string
}

type SiteConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Handler     string `yaml:"handler"`
	Fetcher     string `yaml:"fetcher"`
	Endpoint    string `yaml:"endpoint"`
	BaseURL     string `yaml:"base_url"`
	Enabled     *bool  `yaml:"enabled"`
	RateLimitMS int    `yaml:"rate_limit_ms"` // pause before this site's fetch, overrides SCRAPE_DELAY_MS
}

// RateLimit returns the site's own pause before fetching, zero if unset.
func (s *SiteConfig) RateLimit() time.Duration {
	return time.Duration(s.RateLimitMS) * time.Millisecond
}

const (
	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

// Handlers known to the scraper package. Kept here so a bad site file fails at load.
var KnownHandlers = map[string]bool{
	"citya":     true,
	"century21": true,
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Scraper: ScraperConfig{
			DelayMS:   getEnvInt("SCRAPE_DELAY_MS", 500),
			Timeout:   getEnvDuration("HTTP_TIMEOUT", 15*time.Second),
			UserAgent: getEnv("USER_AGENT", defaultUserAgent),
		},
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		DBPath:   getEnv("DB_PATH", "offers.db"),
		LogPath:  getEnv("LOG_PATH", "offers.log"),
		SitesDir: getEnv("SITES_DIR", filepath.Join("config", "sites")),
	}

	level, err := models.ParseLogLevel(getEnv("LOG_LEVEL", string(models.LogLevelInfo)))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	if err := cfg.loadSiteConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsEnabled reports whether the site takes part in scraping. Sites are enabled unless set otherwise.
func (s *SiteConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

func (s *SiteConfig) validate() error {
	if s.ID == "" {
		return fmt.Errorf("site has no id")
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if s.Handler == "" {
		s.Handler = s.ID
	}
	if !KnownHandlers[s.Handler] {
		return fmt.Errorf("site %s: unknown handler %q", s.ID, s.Handler)
	}
	switch s.Fetcher {
	case "":
		s.Fetcher = FetcherHTTP
	case FetcherHTTP, FetcherBrowser:
	default:
		return fmt.Errorf("site %s: unknown fetcher %q", s.ID, s.Fetcher)
	}
	if s.Endpoint == "" {
		return fmt.Errorf("site %s: endpoint is required", s.ID)
	}
	if s.RateLimitMS < 0 {
		return fmt.Errorf("site %s: rate_limit_ms must not be negative", s.ID)
	}
	return nil
}

// loadSiteConfigs reads one YAML file per site. Files are read in name order,
// which is also the order sources are scraped in.
func (c *Config) loadSiteConfigs() error {
	entries, err := os.ReadDir(c.SitesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		path := filepath.Join(c.SitesDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var site SiteConfig
		if err := yaml.Unmarshal(data, &site); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := site.validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if seen[site.ID] {
			return fmt.Errorf("%s: duplicate site id %s", path, site.ID)
		}
		seen[site.ID] = true

		if !site.IsEnabled() {
			continue
		}
		c.Sites = append(c.Sites, &site)
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
