package database

import (
	"fmt"
	"net/url"

	"github.com/VpkPrasanna/deepgram-go/internal/config"
)

// BuildConnString renders cfg as a postgres URL. The password is
// URL-escaped so special characters survive. sslmode is only appended
// when configured; config defaults set it to "prefer" for any
// configured store, and pgx applies the same default otherwise.
func BuildConnString(cfg config.DBConfig) string {
	conn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
	if cfg.SSLMode != "" {
		conn += "?sslmode=" + cfg.SSLMode
	}
	return conn
}
