package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingDBSettings is returned when a database is needed but the PG*
// settings are incomplete.
var ErrMissingDBSettings = errors.New("missing environment variables for DB load")

type Config struct {
	PGHost         string  `mapstructure:"PGHOST"`
	PGPort         int     `mapstructure:"PGPORT"`
	PGDatabase     string  `mapstructure:"PGDATABASE"`
	PGUser         string  `mapstructure:"PGUSER"`
	PGPassword     string  `mapstructure:"PGPASSWORD"`
	PGSchema       string  `mapstructure:"PGSCHEMA"`
	PGSSLMode      string  `mapstructure:"PGSSLMODE"`
	DatabaseURL    string  `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32   `mapstructure:"DB_MAX_CONNS"`
	LogLevel       string  `mapstructure:"LOG_LEVEL"`
	LogFormat      string  `mapstructure:"LOG_FORMAT"`
	ComplaintHours float64 `mapstructure:"FEEDBACK_COMPLAINT_HOURS"`
}

var keys = []string{
	"PGHOST", "PGPORT", "PGDATABASE", "PGUSER", "PGPASSWORD", "PGSCHEMA", "PGSSLMODE",
	"DATABASE_URL", "DB_MAX_CONNS", "LOG_LEVEL", "LOG_FORMAT", "FEEDBACK_COMPLAINT_HOURS",
}

// Load reads configuration from an optional .env file in the working
// directory, overridden by the process environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path.
func LoadFile(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PGPORT", 5432)
	v.SetDefault("PGSCHEMA", "digital_health")
	v.SetDefault("PGSSLMODE", "prefer")
	v.SetDefault("DB_MAX_CONNS", 4)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("FEEDBACK_COMPLAINT_HOURS", 8)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.PGSchema == "" {
		cfg.PGSchema = "digital_health"
	}
	return cfg, nil
}

// ValidateDB checks that a connection can be built. DATABASE_URL alone is
// enough; otherwise PGHOST, PGDATABASE, PGUSER and PGPASSWORD are required.
func (c *Config) ValidateDB() error {
	if c.DatabaseURL != "" {
		return nil
	}
	var missing []string
	for _, kv := range []struct{ k, v string }{
		{"PGHOST", c.PGHost},
		{"PGDATABASE", c.PGDatabase},
		{"PGUSER", c.PGUser},
		{"PGPASSWORD", c.PGPassword},
	} {
		if kv.v == "" {
			missing = append(missing, kv.k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingDBSettings, strings.Join(missing, ", "))
	}
	return nil
}

// ConnString returns DATABASE_URL when set, else a postgres:// URL built
// from the PG* settings.
func (c *Config) ConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PGUser, c.PGPassword),
		Host:   net.JoinHostPort(c.PGHost, strconv.Itoa(c.PGPort)),
		Path:   "/" + c.PGDatabase,
	}
	if c.PGSSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.PGSSLMode}}.Encode()
	}
	return u.String()
}
