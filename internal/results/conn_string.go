package results

import (
	"fmt"
	"net/url"

	"github.com/rickgao/smokebench/internal/config"
)

// BuildConnString builds a PostgreSQL connection string from config. An
// explicit DSN wins over the individual fields.
func BuildConnString(cfg config.ResultsConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
