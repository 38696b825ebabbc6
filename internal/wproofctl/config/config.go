// Package config stores the wproofctl contexts. A context names a wproofd
// server; one of them is current.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// PathEnv overrides the default file location
const PathEnv = "WPROOFCTL_CONFIG"

var (
	ErrNoCurrentContext = errors.New("no current context set")
	ErrContextNotFound  = errors.New("context not found")
)

type Config struct {
	CurrentContext string              `mapstructure:"current-context" yaml:"current-context"`
	Contexts       map[string]*Context `mapstructure:"contexts" yaml:"contexts"`

	path string
}

// Context is one wproofd server
type Context struct {
	Name               string `mapstructure:"name" yaml:"name"`
	Server             string `mapstructure:"server" yaml:"server"`
	InsecureSkipVerify bool   `mapstructure:"insecure-skip-verify" yaml:"insecure-skip-verify"`
}

// DefaultPath is ~/.wproofctl/config.yaml, or a relative path when there is
// no home directory
func DefaultPath() string {
	dir := ".wproofctl"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, dir)
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the file at path, $WPROOFCTL_CONFIG or DefaultPath, whichever
// is set first. A file that does not exist yet loads as empty.
func Load(path string) (*Config, error) {
	for _, candidate := range []string{path, os.Getenv(PathEnv), DefaultPath()} {
		if candidate != "" {
			path = candidate
			break
		}
	}
	cfg := &Config{path: path, Contexts: map[string]*Context{}}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	var notFound viper.ConfigFileNotFoundError
	switch err := v.ReadInConfig(); {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist), errors.As(err, &notFound):
		return cfg, nil
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = map[string]*Context{}
	}
	// the map key is authoritative
	for name, c := range cfg.Contexts {
		c.Name = name
	}
	return cfg, nil
}

func (c *Config) Path() string { return c.path }

// Save writes the file, creating its directory
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("current-context", c.CurrentContext)
	// set as one map so names containing dots are not split into nested keys
	contexts := map[string]any{}
	for name, ctx := range c.Contexts {
		contexts[name] = map[string]any{
			"name":                 name,
			"server":               ctx.Server,
			"insecure-skip-verify": ctx.InsecureSkipVerify,
		}
	}
	v.Set("contexts", contexts)

	if err := v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("writing %s: %w", c.path, err)
	}
	return nil
}

// Lookup returns the named context
func (c *Config) Lookup(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrContextNotFound, name)
	}
	return ctx, nil
}

// Current returns the current context
func (c *Config) Current() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, ErrNoCurrentContext
	}
	return c.Lookup(c.CurrentContext)
}

// Set adds or replaces the named context. The first context added becomes
// current.
func (c *Config) Set(name string, ctx *Context) {
	if c.Contexts == nil {
		c.Contexts = map[string]*Context{}
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
}

// Use makes the named context current
func (c *Config) Use(name string) error {
	if _, err := c.Lookup(name); err != nil {
		return err
	}
	c.CurrentContext = name
	return nil
}

// Delete removes the named context, clearing CurrentContext when it was current
func (c *Config) Delete(name string) error {
	if _, err := c.Lookup(name); err != nil {
		return err
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return nil
}
