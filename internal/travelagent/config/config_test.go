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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovationmech/travelagent/internal/travelagent/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "travel-agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "8083", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, int64(18181), cfg.Remote.Hotel.AgentCustomerID)
	assert.Equal(t, int64(18181), cfg.Remote.Flight.AgentCustomerID)
	assert.Equal(t, int64(0), cfg.Remote.Taxi.AgentCustomerID)
	assert.Equal(t, 10*time.Second, cfg.Remote.Taxi.Timeout)
	assert.Equal(t, 1, cfg.Remote.Retry.MaxRetries)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.False(t, cfg.Saga.ConcurrentBooking)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
database:
  driver: mysql
  dsn: "user:pass@tcp(localhost:3306)/travel"
remote:
  hotel:
    base_url: "http://hotels.example.com/rest"
    agent_customer_id: 5
    timeout: 3s
  retry:
    max_retries: 2
saga:
  concurrent_booking: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "http://hotels.example.com/rest", cfg.Remote.For(model.ServiceHotel).BaseURL)
	assert.Equal(t, int64(5), cfg.Remote.Hotel.AgentCustomerID)
	assert.Equal(t, 3*time.Second, cfg.Remote.Hotel.Timeout)
	assert.Equal(t, 2, cfg.Remote.Retry.MaxRetries)
	assert.True(t, cfg.Saga.ConcurrentBooking)
	// untouched sections keep defaults
	assert.Equal(t, "http://localhost:8081/rest", cfg.Remote.Flight.BaseURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\n")
	t.Setenv("TRAVEL_AGENT_SERVER_PORT", "7070")
	t.Setenv("TRAVEL_AGENT_REMOTE_TAXI_BASE_URL", "https://taxi.example.com/rest")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "https://taxi.example.com/rest", cfg.Remote.Taxi.BaseURL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Remote, cfg.Remote)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "unknown_driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }},
		{name: "empty_dsn", mutate: func(c *Config) { c.Database.DSN = "" }},
		{name: "bad_base_url", mutate: func(c *Config) { c.Remote.Flight.BaseURL = "ftp://flights" }},
		{name: "missing_host", mutate: func(c *Config) { c.Remote.Hotel.BaseURL = "http://" }},
		{name: "zero_timeout", mutate: func(c *Config) { c.Remote.Taxi.Timeout = 0 }},
		{name: "negative_retries", mutate: func(c *Config) { c.Remote.Retry.MaxRetries = -1 }},
		{name: "inverted_wait", mutate: func(c *Config) { c.Remote.Retry.WaitMax = time.Millisecond }},
		{name: "bad_exporter", mutate: func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Exporter = "zipkin" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
