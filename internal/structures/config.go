package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// SiteConfig describes the publisher site the banners are rendered for.
// Secret keys both the dismissal cookie HMAC and the anti-forgery tokens.
type SiteConfig struct {
	Name         string `yaml:"name"`
	Secret       string `yaml:"secret" validate:"required|minLen:16"`
	CookiePath   string `yaml:"cookiePath"`
	CookieDomain string `yaml:"cookieDomain"`
}

type AdminConfig struct {
	Token string `yaml:"token" validate:"required|minLen:16"`
}

// RateLimitConfig keys buckets on the peer address. TrustProxy switches to
// the first X-Forwarded-For hop and must only be set behind a proxy that
// overwrites that header.
type RateLimitConfig struct {
	Enabled    bool          `yaml:"enabled"`
	PerMinute  int           `yaml:"perMinute"`
	Burst      int           `yaml:"burst"`
	IdleTTL    time.Duration `yaml:"idleTTL"`
	TrustProxy bool          `yaml:"trustProxy"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Site        SiteConfig      `yaml:"site"`
	Admin       AdminConfig     `yaml:"admin"`
	RateLimit   RateLimitConfig `yaml:"rateLimit"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
}
