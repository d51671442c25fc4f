package database

import (
	"net/url"
	"strconv"

	"github.com/rickgao/kalshi-mm/internal/config"
)

// ApplicationName tags journal sessions in pg_stat_activity.
const ApplicationName = "kalshi-mm"

// BuildConnString builds a PostgreSQL URL from config. User and password are
// percent-encoded by net/url.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	query.Set("application_name", ApplicationName)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}
