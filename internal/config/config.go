package config

import "time"

// Config is the root configuration of a smoke run.
type Config struct {
	Defaults DefaultsConfig          `yaml:"defaults"`
	Targets  map[string]TargetConfig `yaml:"targets"`
	Browser  BrowserConfig           `yaml:"browser"`
	Results  ResultsConfig           `yaml:"results"`
}

// DefaultsConfig holds timeouts and scheduling shared by every suite.
type DefaultsConfig struct {
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	LongPollTimeout time.Duration `yaml:"long_poll_timeout"`
	WSTimeout       time.Duration `yaml:"ws_timeout"`
	ChangeWait      time.Duration `yaml:"change_wait"`
	Parallel        int           `yaml:"parallel"`
	WaitReady       time.Duration `yaml:"wait_ready"` // 0 disables the readiness wait
}

// TargetConfig overrides settings for one suite, keyed by suite name.
type TargetConfig struct {
	BaseURL string            `yaml:"base_url"`
	Env     map[string]string `yaml:"env"` // Suite variables such as SMOKE_NAME
}

// BrowserConfig holds settings for browser-driven suites.
type BrowserConfig struct {
	Headless *bool         `yaml:"headless"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ResultsConfig holds the optional run-history database. Either DSN or
// Host enables it.
type ResultsConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a results database is configured.
func (r ResultsConfig) Enabled() bool {
	return r.DSN != "" || r.Host != ""
}

// Target returns the entry for suite name, or the zero value.
func (c *Config) Target(name string) TargetConfig {
	if c == nil || c.Targets == nil {
		return TargetConfig{}
	}
	return c.Targets[name]
}
