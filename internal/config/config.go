// Package config centralizes the proxy's process-wide, immutable-after-
// start configuration: listen/upstream ports, the cache memory budget,
// and the ambient logging/tracing/rate-limit knobs the teacher's own
// config package carried.
//
// Grounded on the teacher's internal/config/config.go singleton +
// DefaultConfig pattern, generalized from a multi-backend load-balancer
// config to this spec's single fixed upstream.
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the complete proxy configuration, aggregating all component
// configurations for centralized management. It is read-only once the
// server starts; no component mutates it.
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream" json:"upstream"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	RateLimit RateLimitConfig `yaml:"rateLimit" json:"rateLimit"`
	Tracing   TracingConfig   `yaml:"tracing" json:"tracing"`
}

// ServerConfig controls the listener the proxy accepts client connections
// on.
type ServerConfig struct {
	ListenPort   int           `yaml:"listenPort" json:"listenPort" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" json:"readTimeout" default:"30s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" json:"writeTimeout" default:"30s"`
	IdleTimeout  time.Duration `yaml:"idleTimeout" json:"idleTimeout" default:"60s"`
}

// UpstreamConfig describes the single fixed upstream origin at
// 127.0.0.1:Port, plus the timeouts and liveness-probe cadence applied to
// it. There is exactly one upstream; this is not a backend pool.
type UpstreamConfig struct {
	Port                  int                 `yaml:"port" json:"port"`
	ConnectTimeout        time.Duration       `yaml:"connectTimeout" json:"connectTimeout" default:"2s"`
	ResponseHeaderTimeout time.Duration       `yaml:"responseHeaderTimeout" json:"responseHeaderTimeout" default:"10s"`
	LivenessProbe         LivenessProbeConfig `yaml:"livenessProbe" json:"livenessProbe"`
}

// LivenessProbeConfig controls the observability-only upstream health
// probe (it never influences routing: there is only one upstream to
// route to).
type LivenessProbeConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled" default:"true"`
	Path     string        `yaml:"path" json:"path" default:"/"`
	Interval time.Duration `yaml:"interval" json:"interval" default:"30s"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" default:"5s"`
}

// CacheConfig controls the in-memory response cache.
type CacheConfig struct {
	Enabled  bool  `yaml:"enabled" json:"enabled" default:"true"`
	MaxBytes int64 `yaml:"maxBytes" json:"maxBytes" default:"268435456"`
}

// RateLimitConfig controls the optional, ambient per-client-IP token
// bucket rate limiter that runs ahead of the cache lookup.
type RateLimitConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled" default:"false"`
	Capacity   int  `yaml:"capacity" json:"capacity" default:"100"`
	RefillRate int  `yaml:"refillRate" json:"refillRate" default:"10"`
}

// TracingConfig controls OpenTelemetry distributed tracing.
type TracingConfig struct {
	Enabled        bool    `yaml:"enabled" json:"enabled" default:"false"`
	ServiceName    string  `yaml:"serviceName" json:"serviceName" default:"cachingproxy"`
	ServiceVersion string  `yaml:"serviceVersion" json:"serviceVersion" default:"0.0.1"`
	Environment    string  `yaml:"environment" json:"environment" default:"development"`
	JaegerEndpoint string  `yaml:"jaegerEndpoint" json:"jaegerEndpoint"`
	OTLPEndpoint   string  `yaml:"otlpEndpoint" json:"otlpEndpoint"`
	SamplingRatio  float64 `yaml:"samplingRatio" json:"samplingRatio" default:"0.1"`
}

// DefaultConfig returns configuration with the spec's default values: a
// 256 MiB cache budget, and sane server/upstream timeouts. The upstream
// port has no sensible default and must be supplied by the driver.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenPort:   8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Upstream: UpstreamConfig{
			ConnectTimeout:        2 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			LivenessProbe: LivenessProbeConfig{
				Enabled:  true,
				Path:     "/",
				Interval: 30 * time.Second,
				Timeout:  5 * time.Second,
			},
		},
		Cache: CacheConfig{
			Enabled:  true,
			MaxBytes: 256 * 1024 * 1024,
		},
		RateLimit: RateLimitConfig{
			Enabled:    false,
			Capacity:   100,
			RefillRate: 10,
		},
		Tracing: TracingConfig{
			Enabled:        false,
			ServiceName:    "cachingproxy",
			ServiceVersion: "0.0.1",
			Environment:    "development",
			SamplingRatio:  0.1,
		},
	}
}

// GetInstance returns the singleton config instance, lazily defaulting it
// if LoadConfig was never called.
func GetInstance() *Config {
	once.Do(func() {
		instance = DefaultConfig()
	})
	return instance
}

// LoadConfig loads configuration from a YAML file at path and installs it
// as the singleton instance. An empty path, or a path that does not
// exist, leaves the default configuration in place — the file is
// optional. cmd/proxy's -listen-port and -upstream-port flags, when set,
// override the ports loaded here.
func LoadConfig(path string) error {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	once.Do(func() {
		instance = cfg
	})
	return nil
}
