package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     Server     `yaml:"server"`
	ContentAPI ContentAPI `yaml:"content_api"`
	Analytics  Analytics  `yaml:"analytics"`
	Cache      Cache      `yaml:"cache"`
	Store      Store      `yaml:"store"`
	Refresher  Refresher  `yaml:"refresher"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"120s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// ContentAPI holds content repository API configuration
type ContentAPI struct {
	BaseURL       string        `yaml:"base_url" env:"CONTENT_API_BASE_URL" env-default:"https://api.contenthub.example"`
	SpaceID       string        `yaml:"space_id" env:"CONTENT_API_SPACE_ID"`
	Environment   string        `yaml:"environment" env:"CONTENT_API_ENVIRONMENT" env-default:"master"`
	AccessToken   string        `yaml:"access_token" env:"CONTENT_API_ACCESS_TOKEN"`
	ScanPageSize  int           `yaml:"scan_page_size" env:"CONTENT_API_SCAN_PAGE_SIZE" env-default:"1000"`
	BatchPageSize int           `yaml:"batch_page_size" env:"CONTENT_API_BATCH_PAGE_SIZE" env-default:"100"`
	Timeout       time.Duration `yaml:"timeout" env:"CONTENT_API_TIMEOUT" env-default:"30s"`
	RetryAttempts int           `yaml:"retry_attempts" env:"CONTENT_API_RETRY_ATTEMPTS" env-default:"3"`
	RetryInterval time.Duration `yaml:"retry_interval" env:"CONTENT_API_RETRY_INTERVAL" env-default:"500ms"`
}

// Accepted chart time range values
const (
	RangeAll      = "all"
	RangePastYear = "past-year"
	Range6Months  = "past-6-months"
)

// Analytics holds the aggregation window configuration
type Analytics struct {
	RecentlyPublishedDays int           `yaml:"recently_published_days" env:"ANALYTICS_RECENTLY_PUBLISHED_DAYS" env-default:"7"`
	NeedsUpdateMonths     int           `yaml:"needs_update_months" env:"ANALYTICS_NEEDS_UPDATE_MONTHS" env-default:"6"`
	TimeToPublishDays     int           `yaml:"time_to_publish_days" env:"ANALYTICS_TIME_TO_PUBLISH_DAYS" env-default:"30"`
	TrackedContentTypes   []string      `yaml:"tracked_content_types" env:"ANALYTICS_TRACKED_CONTENT_TYPES" env-separator:","`
	ExcludedContentTypes  []string      `yaml:"excluded_content_types" env:"ANALYTICS_EXCLUDED_CONTENT_TYPES" env-separator:","`
	DefaultRange          string        `yaml:"default_range" env:"ANALYTICS_DEFAULT_RANGE" env-default:"all"`
	ComputeDeadline       time.Duration `yaml:"compute_deadline" env:"ANALYTICS_COMPUTE_DEADLINE" env-default:"90s"`
}

// Cache holds cache tier configuration
type Cache struct {
	MemoTTL      time.Duration `yaml:"memo_ttl" env:"CACHE_MEMO_TTL" env-default:"5m"`
	MemoSize     int           `yaml:"memo_size" env:"CACHE_MEMO_SIZE" env-default:"64"`
	SnapshotTTL  time.Duration `yaml:"snapshot_ttl" env:"CACHE_SNAPSHOT_TTL" env-default:"30m"`
	DirectoryTTL time.Duration `yaml:"directory_ttl" env:"CACHE_DIRECTORY_TTL" env-default:"1h"`
}

// Store holds snapshot store configuration
type Store struct {
	// Backend selects the durable snapshot store: memory, postgres, s3, redis
	Backend string `yaml:"backend" env:"STORE_BACKEND" env-default:"memory"`

	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`

	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`

	S3Endpoint        string `yaml:"s3_endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	S3AccessKeyID     string `yaml:"s3_access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	S3Bucket          string `yaml:"s3_bucket" env:"S3_BUCKET" env-default:"analytics"`
	S3Region          string `yaml:"s3_region" env:"S3_REGION" env-default:"us-east-1"`
}

// Refresher holds background snapshot refresher configuration
type Refresher struct {
	Enabled  bool          `yaml:"enabled" env:"REFRESHER_ENABLED" env-default:"false"`
	Interval time.Duration `yaml:"interval" env:"REFRESHER_INTERVAL" env-default:"15m"`
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	cfg.Normalize()
	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize replaces invalid values with defaults. Misconfigured windows fall
// back silently rather than failing startup.
func (c *Config) Normalize() {
	if c.Analytics.RecentlyPublishedDays <= 0 {
		c.Analytics.RecentlyPublishedDays = 7
	}
	if c.Analytics.NeedsUpdateMonths <= 0 {
		c.Analytics.NeedsUpdateMonths = 6
	}
	if c.Analytics.TimeToPublishDays <= 0 {
		c.Analytics.TimeToPublishDays = 30
	}
	switch c.Analytics.DefaultRange {
	case RangeAll, RangePastYear, Range6Months:
	default:
		c.Analytics.DefaultRange = RangeAll
	}
	if c.Analytics.ComputeDeadline <= 0 {
		c.Analytics.ComputeDeadline = 90 * time.Second
	}
	if c.ContentAPI.ScanPageSize <= 0 || c.ContentAPI.ScanPageSize > 1000 {
		c.ContentAPI.ScanPageSize = 1000
	}
	if c.ContentAPI.BatchPageSize <= 0 || c.ContentAPI.BatchPageSize > 100 {
		c.ContentAPI.BatchPageSize = 100
	}
	if c.ContentAPI.RetryAttempts < 0 {
		c.ContentAPI.RetryAttempts = 3
	}
	if c.Cache.MemoTTL <= 0 {
		c.Cache.MemoTTL = 5 * time.Minute
	}
	if c.Cache.MemoSize <= 0 {
		c.Cache.MemoSize = 64
	}
	if c.Cache.SnapshotTTL <= 0 {
		c.Cache.SnapshotTTL = 30 * time.Minute
	}
	if c.Cache.DirectoryTTL <= 0 {
		c.Cache.DirectoryTTL = time.Hour
	}
	switch c.Store.Backend {
	case "memory", "postgres", "s3", "redis":
	default:
		c.Store.Backend = "memory"
	}
	if c.Refresher.Interval <= 0 {
		c.Refresher.Interval = 15 * time.Minute
	}
}
