package config

import "time"

// S3 holds the optional report upload target. An empty Bucket disables
// uploads.
type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	LinkTTL   time.Duration
}

// Config holds runtime settings for the lawdesk CLI.
type Config struct {
	ServerBaseURL       string
	RequestTimeout      time.Duration
	LongRequestTimeout  time.Duration
	RetryAttempts       int
	RetryBaseDelay      time.Duration
	RetryMaxDelay       time.Duration
	RateLimit           float64
	RateBurst           int
	OnlineCheckInterval time.Duration

	DBPath        string
	LogFormat     string
	LogLevel      string
	SessionSecret string

	VideoAPIURL   string
	VideoAPIKey   string
	VideoQuery    string
	VideoCacheTTL time.Duration

	ExportDir             string
	S3                    S3
	HistoryResolveWorkers int
	PageSize              int
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000/api"
	c.RequestTimeout = 15 * time.Second
	c.LongRequestTimeout = 120 * time.Second
	c.RetryAttempts = 2
	c.RetryBaseDelay = 500 * time.Millisecond
	c.RetryMaxDelay = 4 * time.Second
	c.RateLimit = 10
	c.RateBurst = 20
	c.OnlineCheckInterval = 5 * time.Second

	c.DBPath = "lawdesk.db"
	c.LogFormat = "text"
	c.LogLevel = "warn"

	c.VideoAPIURL = "https://www.googleapis.com/youtube/v3"
	c.VideoQuery = "legal advice"
	c.VideoCacheTTL = 24 * time.Hour

	c.ExportDir = "reports"
	c.S3.LinkTTL = 24 * time.Hour
	c.HistoryResolveWorkers = 4
	c.PageSize = 10
}

// LoadConfig applies defaults, then the JSON file (if any), then flags.
// Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
