package config

import (
	"fmt"
	"log"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "WIRELINK_"

type Config struct {
	ListenPort      string        // ex: ":25564"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DataDir        string        // directory holding endpoints/ and waypoints/
	WorldsFile     string        // optional YAML world catalog, empty = vanilla dimensions
	WorldsReload   time.Duration // how often WorldsFile is re-read
	IndexURL       string        // where GET / redirects
	WebhookTimeout time.Duration // 0 = transport defaults
	GCInterval     time.Duration // how often leftover temp files are swept
	GCThreshold    time.Duration // age after which a temp file is considered abandoned

	RateBurst  int // toggle requests allowed in a burst per client
	RatePerMin int // sustained toggle requests per minute per client

	// Redis (optional event mirror)
	RedisAddr             string        // ex: "localhost:6379", empty disables Redis
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => refuse to start without a password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout
	RedisRT               time.Duration // Redis read timeout
	RedisWT               time.Duration // Redis write timeout
	RedisMaxWait          time.Duration // max wait between retries
	RedisPingTimeout      time.Duration // timeout for each ping attempt
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // total time to retry connecting
	RedisRetryInterval    time.Duration // initial wait between retries
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // restrict the bridge API to these Host headers (empty = any)
	AllowedCIDRS []string // restrict bridge and probe routes to these networks
	TrustProxy   bool     // true => trust X-Forwarded-For / X-Real-IP
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LISTEN_PORT", ":25564"),
		ShutdownTimeout: mustDuration("SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LOG_LEVEL", "info"),
		PrettyLog: mustBool("PRETTY_LOG", false),

		// Markers
		DataDir:        getenv("DATA_DIR", "redstone"),
		WorldsFile:     getenv("WORLDS_FILE", ""),
		WorldsReload:   mustDuration("WORLDS_RELOAD_INTERVAL", 5*time.Minute),
		IndexURL:       getenv("INDEX_URL", "https://seikimo.moe/"),
		WebhookTimeout: mustDuration("WEBHOOK_TIMEOUT", 0),
		GCInterval:     mustDuration("GC_INTERVAL", time.Hour),
		GCThreshold:    mustDuration("GC_THRESHOLD", time.Hour),

		RateBurst:  getenvInt("RATE_BURST", 10),
		RatePerMin: getenvInt("RATE_PER_MIN", 120),

		// Redis settings
		RedisAddr:             getenv("REDIS_ADDR", ""),
		RedisUser:             getenv("REDIS_USERNAME", ""),
		RedisPassword:         getenv("REDIS_PASSWORD", ""),
		RedisPasswordRequired: mustBool("REDIS_PASSWORD_REQUIRED", false),
		RedisDB:               getenvInt("REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("ALLOWED_CIDRS", "127.0.0.0/8,::1/128")),
		TrustProxy:   mustBool("TRUST_PROXY", false),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%sDATA_DIR must not be empty", envPrefix)
	}
	if c.RedisAddr != "" && c.RedisPasswordRequired && c.RedisPassword == "" {
		return fmt.Errorf("%sREDIS_PASSWORD is required when %sREDIS_PASSWORD_REQUIRED=true", envPrefix, envPrefix)
	}
	if c.WorldsFile != "" && c.WorldsReload <= 0 {
		return fmt.Errorf("%sWORLDS_RELOAD_INTERVAL must be positive", envPrefix)
	}
	if c.GCInterval <= 0 {
		return fmt.Errorf("%sGC_INTERVAL must be positive", envPrefix)
	}
	if c.RateBurst <= 0 || c.RatePerMin <= 0 {
		return fmt.Errorf("rate limit must be positive (burst=%d, per_min=%d)", c.RateBurst, c.RatePerMin)
	}
	for _, cidr := range c.AllowedCIDRS {
		if _, err := netip.ParsePrefix(cidr); err != nil {
			if _, err := netip.ParseAddr(cidr); err != nil {
				return fmt.Errorf("invalid entry %q in %sALLOWED_CIDRS", cidr, envPrefix)
			}
		}
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// RedisEnabled reports whether the event mirror is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(envPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
