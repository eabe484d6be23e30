package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/flagx"
	"github.com/dmitrijs2005/lawdesk/internal/timex"
)

// JsonConfig is the on-disk shape. Zero values mean "keep the default".
type JsonConfig struct {
	ServerBaseURL       string         `json:"server_base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	LongRequestTimeout  timex.Duration `json:"long_request_timeout"`
	RetryAttempts       int            `json:"retry_attempts"`
	RetryBaseDelay      timex.Duration `json:"retry_base_delay"`
	RetryMaxDelay       timex.Duration `json:"retry_max_delay"`
	RateLimit           float64        `json:"rate_limit"`
	RateBurst           int            `json:"rate_burst"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`

	DBPath        string `json:"db_path"`
	LogFormat     string `json:"log_format"`
	LogLevel      string `json:"log_level"`
	SessionSecret string `json:"session_secret"`

	VideoAPIURL   string         `json:"video_api_url"`
	VideoAPIKey   string         `json:"video_api_key"`
	VideoQuery    string         `json:"video_query"`
	VideoCacheTTL timex.Duration `json:"video_cache_ttl"`

	ExportDir             string         `json:"export_dir"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3Endpoint            string         `json:"s3_endpoint"`
	S3User                string         `json:"s3_user"`
	S3Password            string         `json:"s3_password"`
	S3LinkTTL             timex.Duration `json:"s3_link_ttl"`
	HistoryResolveWorkers int            `json:"history_resolve_workers"`
	PageSize              int            `json:"page_size"`
}

// parseJson overlays cfg with the file named by -c/-config (or
// $LAWDESK_CONFIG). It panics on unreadable or malformed files.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.ServerBaseURL, jc.ServerBaseURL)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.LongRequestTimeout, jc.LongRequestTimeout)
	setInt(&cfg.RetryAttempts, jc.RetryAttempts)
	setDuration(&cfg.RetryBaseDelay, jc.RetryBaseDelay)
	setDuration(&cfg.RetryMaxDelay, jc.RetryMaxDelay)
	if jc.RateLimit != 0 {
		cfg.RateLimit = jc.RateLimit
	}
	setInt(&cfg.RateBurst, jc.RateBurst)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)

	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.SessionSecret, jc.SessionSecret)

	setString(&cfg.VideoAPIURL, jc.VideoAPIURL)
	setString(&cfg.VideoAPIKey, jc.VideoAPIKey)
	setString(&cfg.VideoQuery, jc.VideoQuery)
	setDuration(&cfg.VideoCacheTTL, jc.VideoCacheTTL)

	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.S3.Bucket, jc.S3Bucket)
	setString(&cfg.S3.Region, jc.S3Region)
	setString(&cfg.S3.Endpoint, jc.S3Endpoint)
	setString(&cfg.S3.AccessKey, jc.S3User)
	setString(&cfg.S3.SecretKey, jc.S3Password)
	setDuration(&cfg.S3.LinkTTL, jc.S3LinkTTL)
	setInt(&cfg.HistoryResolveWorkers, jc.HistoryResolveWorkers)
	setInt(&cfg.PageSize, jc.PageSize)
}
