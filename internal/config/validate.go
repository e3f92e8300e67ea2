package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	d := c.Defaults
	if d.HTTPTimeout <= 0 {
		return errors.New("defaults.http_timeout must be > 0")
	}
	if d.LongPollTimeout <= 0 {
		return errors.New("defaults.long_poll_timeout must be > 0")
	}
	if d.WSTimeout <= 0 {
		return errors.New("defaults.ws_timeout must be > 0")
	}
	if d.ChangeWait <= 0 {
		return errors.New("defaults.change_wait must be > 0")
	}
	if d.Parallel < 1 {
		return errors.New("defaults.parallel must be >= 1")
	}
	if d.WaitReady < 0 {
		return errors.New("defaults.wait_ready must be >= 0")
	}

	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.Targets[name].validate("targets." + name); err != nil {
			return err
		}
	}

	if c.Browser.Timeout < 0 {
		return errors.New("browser.timeout must be >= 0")
	}

	if c.Results.Enabled() && c.Results.DSN == "" {
		if err := c.Results.validate("results"); err != nil {
			return err
		}
	}

	return nil
}

func (t TargetConfig) validate(prefix string) error {
	if t.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(t.BaseURL)
	if err != nil {
		return fmt.Errorf("%s.base_url: %w", prefix, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("%s.base_url must be an http(s) or ws(s) URL, got %q", prefix, t.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%s.base_url has no host: %q", prefix, t.BaseURL)
	}
	return nil
}

func (db *ResultsConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
