// Package config loads runtime configuration for the lawdesk CLI.
//
// Sources, in order of precedence (last wins):
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given by -c / -config or $LAWDESK_CONFIG.
//  3. Command-line flags -a, -t, -d, -l and -i.
//
// Durations in JSON are strings like "15s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "https://lawdesk.example/api",
//	  "request_timeout": "15s",
//	  "video_cache_ttl": "24h",
//	  "s3_bucket": "lawdesk-reports"
//	}
package config
