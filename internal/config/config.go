// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// File: internal/config/config.go
// Package: config
//
// Description:
// Runtime configuration for rcctl. Values come from, in increasing
// precedence: built-in defaults, an optional YAML file, RCCTL_* environment
// variables and finally command-line flags (applied by the cmd package).

// Package config loads rcctl settings from a YAML file and the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds every rcctl setting after defaults, file and environment are merged.
type Config struct {
	Endpoint struct {
		Host string `yaml:"host" env:"RCCTL_HOST" env-default:"172.17.2.96" env-description:"Device host used when --host is blank"`
		Port int    `yaml:"port" env:"RCCTL_PORT" env-default:"666" env-description:"Device port used when --port is blank"`
	} `yaml:"endpoint"`
	Client struct {
		Timeout    time.Duration `yaml:"timeout" env:"RCCTL_TIMEOUT" env-default:"0s" env-description:"Bound on a whole round trip, 0 waits forever"`
		BufferSize int           `yaml:"buffer_size" env:"RCCTL_BUFFER_SIZE" env-default:"1024" env-description:"Reply buffer capacity in bytes"`
		ReadMode   string        `yaml:"read_mode" env:"RCCTL_READ_MODE" env-default:"once" env-description:"Reply framing: once or eof"`
		Proxy      string        `yaml:"proxy" env:"RCCTL_PROXY" env-description:"SOCKS proxy URL, falls back to a socks ALL_PROXY"`

		// IgnoredProxy records a non-SOCKS ALL_PROXY value that was skipped.
		IgnoredProxy string `yaml:"-"`
	} `yaml:"client"`
	Log struct {
		Level string `yaml:"level" env:"RCCTL_LOG_LEVEL" env-default:"warn" env-description:"debug, info, warn or error"`
		File  string `yaml:"file" env:"RCCTL_LOG_FILE" env-description:"Also write JSON logs to this file"`
	} `yaml:"log"`
	Speech struct {
		Command string `yaml:"command" env:"RCCTL_SPEECH_COMMAND" env-default:"espeak" env-description:"Text-to-speech program"`
		Voice   string `yaml:"voice" env:"RCCTL_SPEECH_VOICE" env-default:"en-us" env-description:"Voice passed to the speech program"`
		Rate    int    `yaml:"rate" env:"RCCTL_SPEECH_RATE" env-default:"122" env-description:"Words per minute"`
		Pitch   int    `yaml:"pitch" env:"RCCTL_SPEECH_PITCH" env-default:"15" env-description:"Pitch, 0 to 99"`
	} `yaml:"speech"`
}

// Load reads the configuration. When path is empty only the environment
// and defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to read environment: %w", err)
	}

	if cfg.Client.Proxy == "" {
		// ALL_PROXY is shared with other tools and often names an HTTP proxy.
		if v := firstEnv("ALL_PROXY", "all_proxy"); isSOCKS(v) {
			cfg.Client.Proxy = v
		} else {
			cfg.Client.IgnoredProxy = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if c.Client.BufferSize <= 0 {
		return fmt.Errorf("config: buffer_size must be positive, got %d", c.Client.BufferSize)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Client.Timeout)
	}
	switch strings.ToLower(c.Client.ReadMode) {
	case "once", "eof":
	default:
		return fmt.Errorf("config: invalid read_mode: %s. Valid options are 'once' or 'eof'", c.Client.ReadMode)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level: %s", c.Log.Level)
	}
	return nil
}

// Usage describes every environment variable Load understands.
func Usage() string {
	help, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return help
}

// isSOCKS reports whether v is a proxy URL the SOCKS dialer understands.
func isSOCKS(v string) bool {
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "socks", "socks5", "socks5h":
		return true
	}
	return false
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
