// Load envs from .env
// Load YAML config
// Provide built-in defaults for the keyword tables

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// RoleCategory pairs a category name with the phrases that select it.
// Order matters: the first category with a match wins.
type RoleCategory struct {
	Name    string   `yaml:"name"`
	Phrases []string `yaml:"phrases"`
}

type Config struct {
	//database (sqlite file path by default, postgres:// DSN also accepted)
	DatabaseDSN string `yaml:"database_dsn"`

	//search criteria
	Country        string   `yaml:"country"`
	Location       string   `yaml:"location"`
	DefaultQueries []string `yaml:"default_queries"`

	//filtering
	MaxAgeDays int                 `yaml:"max_age_days"`
	Keywords   map[string][]string `yaml:"keywords"`
	Categories []RoleCategory      `yaml:"categories"`

	//scraping behaviour
	MaxRetries      int           `yaml:"max_retries"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	RequestDelayMin time.Duration `yaml:"request_delay_min"`
	RequestDelayMax time.Duration `yaml:"request_delay_max"`
	SourceWorkers   int           `yaml:"source_workers"`
	Headless        bool          `yaml:"headless"`

	//notifications (optional)
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
	CachePath      string `yaml:"cache_path"`

	//display
	MaxTableRows int `yaml:"max_table_rows"`
}

// Default returns the built-in configuration. The keyword and category
// tables mirror the French data-role market this tool was written for.
func Default() *Config {
	return &Config{
		DatabaseDSN: "jobs.db",
		Country:     "France",
		Location:    "France",
		DefaultQueries: []string{
			"data analyst",
			"business analyst",
			"data engineer",
		},
		MaxAgeDays: 3,
		Keywords: map[string][]string{
			"data_analyst":     {"data analyst", "analyste de données", "analyste données"},
			"business_analyst": {"business analyst", "analyste business", "analyste métier"},
			"data_engineer":    {"data engineer", "ingénieur données", "ingénieur data"},
			"data_general":     {"data", "données"},
			"business_general": {"business"},
		},
		Categories: []RoleCategory{
			{Name: "Data Engineer", Phrases: []string{"data engineer", "ingénieur données", "ingénieur data"}},
			{Name: "Data Analyst", Phrases: []string{"data analyst", "analyste de données", "analyste données"}},
			{Name: "Business Analyst", Phrases: []string{"business analyst", "analyste business", "analyste métier"}},
			//catch-all, no phrases on purpose
			{Name: "Other"},
		},
		MaxRetries:      3,
		RetryDelay:      2 * time.Second,
		RequestDelayMin: 1 * time.Second,
		RequestDelayMax: 3 * time.Second,
		SourceWorkers:   3,
		Headless:        true,
		CachePath:       ".cache",
		MaxTableRows:    500,
	}
}

// Load reads configs/config.yaml if present and applies env overrides on top
// of the defaults. Missing file or empty fields fall back to Default values.
func Load(path string) *Config {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: could not read %s: %v", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", path, err)
		}
	}

	//override with env vars
	if dsn := os.Getenv("JOBRADAR_DATABASE_DSN"); dsn != "" {
		cfg.DatabaseDSN = dsn
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}

	cfg.applyFallbacks()
	return cfg
}

// applyFallbacks repairs fields a partial YAML file may have blanked out. A
// config with no queries or no keyword table would silently match nothing, so
// those degrade to the built-in defaults instead of failing the run.
func (c *Config) applyFallbacks() {
	def := Default()

	if c.DatabaseDSN == "" {
		c.DatabaseDSN = def.DatabaseDSN
	}
	if c.Country == "" {
		c.Country = def.Country
	}
	if c.Location == "" {
		c.Location = def.Location
	}
	if len(c.DefaultQueries) == 0 {
		c.DefaultQueries = def.DefaultQueries
	}
	if c.MaxAgeDays <= 0 {
		c.MaxAgeDays = def.MaxAgeDays
	}
	if len(c.Keywords) == 0 {
		c.Keywords = def.Keywords
	}
	if len(c.Categories) == 0 {
		c.Categories = def.Categories
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = def.RetryDelay
	}
	if c.RequestDelayMin <= 0 {
		c.RequestDelayMin = def.RequestDelayMin
	}
	if c.RequestDelayMax < c.RequestDelayMin {
		c.RequestDelayMax = c.RequestDelayMin + 2*time.Second
	}
	if c.SourceWorkers <= 0 {
		c.SourceWorkers = def.SourceWorkers
	}
	if c.CachePath == "" {
		c.CachePath = def.CachePath
	}
	if c.MaxTableRows <= 0 {
		c.MaxTableRows = def.MaxTableRows
	}
}

// UserAgents rotated by the HTTP client and the browser contexts.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}
