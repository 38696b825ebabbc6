// Package config provides configuration management for the wrale-proof server
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Settings storage drivers
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the server
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	Settings  SettingsConfig  `yaml:"settings"`
	Rotation  RotationConfig  `yaml:"rotation"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	TLSCert      string        `yaml:"tlsCert"`
	TLSKey       string        `yaml:"tlsKey"`
	// AllowedOrigins lists the sites whose pages may open overlay streams
	AllowedOrigins []string `yaml:"allowedOrigins"`
	// SiteName is the organization named in structured data
	SiteName string `yaml:"siteName"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns the lib/pq connection string
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisConfig holds page association and rate limit store settings. With
// no address both fall back to process memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig holds impression event publishing settings. With no URL
// impressions are only logged.
type NATSConfig struct {
	URL           string        `yaml:"url"`
	SubjectPrefix string        `yaml:"subjectPrefix"`
	MaxReconnects int           `yaml:"maxReconnects"`
	ReconnectWait time.Duration `yaml:"reconnectWait"`
}

// SettingsConfig selects where overlay settings are stored
type SettingsConfig struct {
	// Driver is file or postgres
	Driver string `yaml:"driver"`
	// Path is the YAML document used by the file driver
	Path string `yaml:"path"`
}

// RotationConfig tunes page sessions
type RotationConfig struct {
	TickInterval time.Duration `yaml:"tickInterval"`
	FadeDuration time.Duration `yaml:"fadeDuration"`
}

// RateLimitConfig bounds how often one address may open streams
type RateLimitConfig struct {
	StreamRate   int           `yaml:"streamRate"`
	StreamPeriod time.Duration `yaml:"streamPeriod"`
	StreamBurst  int           `yaml:"streamBurst"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			SiteName:     "wrale-proof",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "wproof",
			User:            "wproof",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		NATS: NATSConfig{
			SubjectPrefix: "wproof.impressions",
			MaxReconnects: 60,
			ReconnectWait: 2 * time.Second,
		},
		Settings: SettingsConfig{
			Driver: DriverFile,
			Path:   "wproof-settings.yaml",
		},
		Rotation: RotationConfig{
			TickInterval: 50 * time.Millisecond,
			FadeDuration: 300 * time.Millisecond,
		},
		RateLimit: RateLimitConfig{
			StreamRate:   30,
			StreamPeriod: time.Minute,
			StreamBurst:  10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// overlayEnv applies WPROOF_* variables, plus the conventional DB_*,
// POSTGRES_*, REDIS_ADDR and NATS_URL names, over the loaded values
func (c *Config) overlayEnv() {
	srv := &c.Server
	fromEnv(&srv.Host, asString, "WPROOF_SERVER_HOST")
	fromEnv(&srv.Port, asInt, "WPROOF_SERVER_PORT")
	fromEnv(&srv.ReadTimeout, asDuration, "WPROOF_SERVER_READ_TIMEOUT")
	fromEnv(&srv.WriteTimeout, asDuration, "WPROOF_SERVER_WRITE_TIMEOUT")
	fromEnv(&srv.TLSCert, asString, "WPROOF_TLS_CERT")
	fromEnv(&srv.TLSKey, asString, "WPROOF_TLS_KEY")
	fromEnv(&srv.AllowedOrigins, asList, "WPROOF_ALLOWED_ORIGINS")
	fromEnv(&srv.SiteName, asString, "WPROOF_SITE_NAME")

	db := &c.Database
	fromEnv(&db.Host, asString, "WPROOF_DB_HOST", "DB_HOST", "POSTGRES_HOST")
	fromEnv(&db.Port, asInt, "WPROOF_DB_PORT", "DB_PORT", "POSTGRES_PORT")
	fromEnv(&db.Name, asString, "WPROOF_DB_NAME", "DB_NAME", "POSTGRES_DB")
	fromEnv(&db.User, asString, "WPROOF_DB_USER", "DB_USER", "POSTGRES_USER")
	fromEnv(&db.Password, asString, "WPROOF_DB_PASSWORD", "DB_PASSWORD", "POSTGRES_PASSWORD")
	fromEnv(&db.SSLMode, asString, "WPROOF_DB_SSLMODE")
	fromEnv(&db.MaxOpenConns, asInt, "WPROOF_DB_MAX_OPEN_CONNS")
	fromEnv(&db.MaxIdleConns, asInt, "WPROOF_DB_MAX_IDLE_CONNS")

	fromEnv(&c.Redis.Addr, asString, "WPROOF_REDIS_ADDR", "REDIS_ADDR")
	fromEnv(&c.Redis.Password, asString, "WPROOF_REDIS_PASSWORD")
	fromEnv(&c.Redis.DB, asInt, "WPROOF_REDIS_DB")
	fromEnv(&c.NATS.URL, asString, "WPROOF_NATS_URL", "NATS_URL")
	fromEnv(&c.NATS.SubjectPrefix, asString, "WPROOF_NATS_SUBJECT_PREFIX")

	fromEnv(&c.Settings.Driver, asString, "WPROOF_SETTINGS_DRIVER")
	fromEnv(&c.Settings.Path, asString, "WPROOF_SETTINGS_PATH")

	fromEnv(&c.Rotation.TickInterval, asDuration, "WPROOF_TICK_INTERVAL")
	fromEnv(&c.Rotation.FadeDuration, asDuration, "WPROOF_FADE_DURATION")

	fromEnv(&c.RateLimit.StreamRate, asInt, "WPROOF_STREAM_RATE")
	fromEnv(&c.RateLimit.StreamPeriod, asDuration, "WPROOF_STREAM_PERIOD")
	fromEnv(&c.RateLimit.StreamBurst, asInt, "WPROOF_STREAM_BURST")

	fromEnv(&c.Log.Level, asString, "WPROOF_LOG_LEVEL")
	fromEnv(&c.Log.Pretty, asBool, "WPROOF_LOG_PRETTY")
}
