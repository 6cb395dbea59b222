// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
)

// EnvPrefix is the prefix of environment variables overriding file settings,
// e.g. TRAVEL_AGENT_SERVER_PORT.
const EnvPrefix = "TRAVEL_AGENT"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Saga     SagaConfig     `mapstructure:"saga"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Events   EventsConfig   `mapstructure:"events"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port               string        `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// RemoteServiceConfig describes one remote booking service.
type RemoteServiceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// AgentCustomerID is the travel agent's own customer account on the
	// remote service; bookings are made under this account.
	AgentCustomerID int64         `mapstructure:"agent_customer_id"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// RetryConfig bounds retries of remote calls.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	WaitMin    time.Duration `mapstructure:"wait_min"`
	WaitMax    time.Duration `mapstructure:"wait_max"`
}

// RemoteConfig groups the three remote booking services.
type RemoteConfig struct {
	Hotel  RemoteServiceConfig `mapstructure:"hotel"`
	Flight RemoteServiceConfig `mapstructure:"flight"`
	Taxi   RemoteServiceConfig `mapstructure:"taxi"`
	Retry  RetryConfig         `mapstructure:"retry"`
}

// For returns the settings of the given service.
func (r RemoteConfig) For(s model.Service) RemoteServiceConfig {
	switch s {
	case model.ServiceHotel:
		return r.Hotel
	case model.ServiceFlight:
		return r.Flight
	case model.ServiceTaxi:
		return r.Taxi
	}
	return RemoteServiceConfig{}
}

// SagaConfig tunes the booking saga.
type SagaConfig struct {
	ConcurrentBooking bool `mapstructure:"concurrent_booking"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// TracingConfig contains OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"`
	Endpoint     string  `mapstructure:"endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// EventsConfig configures operator notifications about orphaned bookings.
// Empty values disable the corresponding notifier.
type EventsConfig struct {
	NATSURL   string `mapstructure:"nats_url"`
	Subject   string `mapstructure:"subject"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8083")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "travel-agent.db")

	v.SetDefault("remote.hotel.base_url", "http://localhost:8080/travel/rest")
	v.SetDefault("remote.hotel.agent_customer_id", 18181)
	v.SetDefault("remote.hotel.timeout", 10*time.Second)
	v.SetDefault("remote.flight.base_url", "http://localhost:8081/rest")
	v.SetDefault("remote.flight.agent_customer_id", 18181)
	v.SetDefault("remote.flight.timeout", 10*time.Second)
	v.SetDefault("remote.taxi.base_url", "http://localhost:8082/rest")
	v.SetDefault("remote.taxi.agent_customer_id", 0)
	v.SetDefault("remote.taxi.timeout", 10*time.Second)
	v.SetDefault("remote.retry.max_retries", 1)
	v.SetDefault("remote.retry.wait_min", 100*time.Millisecond)
	v.SetDefault("remote.retry.wait_max", 2*time.Second)

	v.SetDefault("saga.concurrent_booking", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "travel-agent")
	v.SetDefault("tracing.sampling_rate", 1.0)

	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject", "travelagent.orphans")
	v.SetDefault("events.sentry_dsn", "")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration. An explicit path must exist; without one the
// file travel-agent.yaml is looked up in "." and "./config" and defaults are
// used when it is absent. Environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("travel-agent")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}

	for _, s := range model.Services {
		rc := c.Remote.For(s)
		u, err := url.Parse(rc.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("remote.%s.base_url %q is not an http(s) URL", s, rc.BaseURL)
		}
		if rc.Timeout <= 0 {
			return fmt.Errorf("remote.%s.timeout must be positive", s)
		}
	}

	if c.Remote.Retry.MaxRetries < 0 {
		return errors.New("remote.retry.max_retries must not be negative")
	}
	if c.Remote.Retry.WaitMax < c.Remote.Retry.WaitMin {
		return errors.New("remote.retry.wait_max must not be smaller than wait_min")
	}

	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case "stdout", "otlphttp":
		default:
			return fmt.Errorf("unsupported tracing exporter %q", c.Tracing.Exporter)
		}
	}
	return nil
}
