package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultGAEndpoint     = "https://www.google-analytics.com/mp/collect"
	DefaultMetaGraphURL   = "https://graph.facebook.com"
	DefaultMetaAPIVersion = "v19.0"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	HTTPPort     string
	AppMode      string
	FiberPrefork bool

	// ProxyHeader names the header carrying the browser IP (e.g. X-Forwarded-For)
	// when the service runs behind a reverse proxy. Only requests from
	// TrustedProxies are believed when that list is set.
	ProxyHeader    string
	TrustedProxies []string

	WebhookURL     string
	WebhookTimeout time.Duration

	Analytics   AnalyticsConfig
	Conversions ConversionsConfig

	TrackingHTTPTimeout time.Duration
	TrackingHTTPRetries int
	TrackingJobTimeout  time.Duration
	WorkerBufferSize    int

	SessionTTL   time.Duration
	CookieSecure bool

	NATSURL           string
	NATSSubjectPrefix string
}

// AnalyticsConfig configures the Google Analytics Measurement Protocol adapter.
type AnalyticsConfig struct {
	Enabled       bool
	MeasurementID string
	APISecret     string
	Endpoint      string
}

// ConversionsConfig configures the Meta Conversions API adapter.
type ConversionsConfig struct {
	Enabled       bool
	PixelID       string
	AccessToken   string
	GraphURL      string
	APIVersion    string
	TestEventCode string
}

// Load reads configuration from environment variables with sane defaults.
// Platform credentials are optional here; adapters report them when missing.
func Load() (*Config, error) {
	cfg := LoadTracking()
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("WEBHOOK_URL is required")
	}
	return cfg, nil
}

// LoadTracking reads the configuration without requiring the webhook.
// Tools that only send analytics events use it instead of Load.
func LoadTracking() *Config {
	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", ":8080"),
		AppMode:        strings.ToLower(getEnv("APP_MODE", "dev")),
		FiberPrefork:   parseBoolEnv("FIBER_PREFORK", false),
		ProxyHeader:    os.Getenv("PROXY_HEADER"),
		TrustedProxies: parseListEnv("TRUSTED_PROXIES"),
		WebhookTimeout: parseDurationEnv("WEBHOOK_TIMEOUT", 10*time.Second),
		Analytics: AnalyticsConfig{
			Enabled:       parseBoolEnv("GA_ENABLED", true),
			MeasurementID: os.Getenv("GA_MEASUREMENT_ID"),
			APISecret:     os.Getenv("GA_API_SECRET"),
			Endpoint:      getEnv("GA_ENDPOINT", DefaultGAEndpoint),
		},
		Conversions: ConversionsConfig{
			Enabled:       parseBoolEnv("META_ENABLED", true),
			PixelID:       os.Getenv("META_PIXEL_ID"),
			AccessToken:   os.Getenv("META_ACCESS_TOKEN"),
			GraphURL:      getEnv("META_GRAPH_URL", DefaultMetaGraphURL),
			APIVersion:    getEnv("META_API_VERSION", DefaultMetaAPIVersion),
			TestEventCode: os.Getenv("META_TEST_EVENT_CODE"),
		},
		TrackingHTTPTimeout: parseDurationEnv("TRACKING_HTTP_TIMEOUT", 5*time.Second),
		TrackingHTTPRetries: parseIntEnv("TRACKING_HTTP_RETRIES", 0),
		TrackingJobTimeout:  parseDurationEnv("TRACKING_JOB_TIMEOUT", 15*time.Second),
		WorkerBufferSize:    parseIntEnv("WORKER_BUFFER_SIZE", 1024),
		SessionTTL:          parseDurationEnv("SESSION_TTL", 30*time.Minute),
		CookieSecure:        parseBoolEnv("COOKIE_SECURE", true),
		NATSURL:             os.Getenv("NATS_URL"),
		NATSSubjectPrefix:   getEnv("NATS_SUBJECT_PREFIX", "tracking.tags"),
		WebhookURL:          os.Getenv("WEBHOOK_URL"),
	}
	if cfg.TrackingHTTPRetries < 0 {
		cfg.TrackingHTTPRetries = 0
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseBoolEnv(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseIntEnv(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseListEnv(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseDurationEnv(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
