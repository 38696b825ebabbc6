package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if (c.Server.TLSCert != "") != (c.Server.TLSKey != "") {
		return fmt.Errorf("both TLS cert and key must be provided")
	}

	switch c.Settings.Driver {
	case DriverFile:
		if c.Settings.Path == "" {
			return fmt.Errorf("settings path is required for the file driver")
		}
	case DriverPostgres:
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
		if c.Database.MaxOpenConns < 1 {
			return fmt.Errorf("invalid max open connections: %d", c.Database.MaxOpenConns)
		}
		if c.Database.MaxIdleConns < 1 {
			return fmt.Errorf("invalid max idle connections: %d", c.Database.MaxIdleConns)
		}
	default:
		return fmt.Errorf("unknown settings driver %q", c.Settings.Driver)
	}

	if c.Rotation.TickInterval < 10*time.Millisecond {
		return fmt.Errorf("tick interval must be at least 10ms")
	}
	if c.Rotation.FadeDuration < 0 {
		return fmt.Errorf("fade duration must not be negative")
	}
	if c.RateLimit.StreamRate < 1 || c.RateLimit.StreamPeriod <= 0 || c.RateLimit.StreamBurst < 0 {
		return fmt.Errorf("invalid stream rate limit")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}
