package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in DefaultConfigDirs
const FileName = "wproofd.yaml"

// PathEnv names the variable that points at a configuration file
const PathEnv = "WPROOF_CONFIG"

// DefaultConfigDirs are the directories configuration files may live in,
// searched in order when no path is given
var DefaultConfigDirs = []string{
	"/etc/wrale-proof",
	"/usr/local/etc/wrale-proof",
}

// Load builds the configuration from, in increasing priority, the defaults,
// a YAML file and the environment. The file is path when given, then
// $WPROOF_CONFIG, then the first FileName found in DefaultConfigDirs.
// Running without any file is fine.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		return LoadFile(path)
	}

	cfg := Default()
	cfg.overlayEnv()
	return cfg, cfg.validate()
}

// LoadFile loads configuration from a YAML file on top of the defaults
func LoadFile(path string) (*Config, error) {
	resolved, err := resolveConfigPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	cfg := Default()
	if err := decodeFile(resolved, cfg); err != nil {
		return nil, err
	}
	cfg.overlayEnv()

	return cfg, cfg.validate()
}

func findConfigFile() string {
	for _, dir := range DefaultConfigDirs {
		candidate := filepath.Join(dir, FileName)
		if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}

// resolveConfigPath returns the real location of path after checking that
// it is a YAML file inside an allowed directory. WPROOF_DEV_MODE=1 also
// allows the working directory tree.
func resolveConfigPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	real, err := filepath.EvalSymlinks(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		real = filepath.Clean(abs)
	case err != nil:
		return "", fmt.Errorf("error resolving config path: %w", err)
	}

	switch strings.ToLower(filepath.Ext(real)) {
	case ".yaml", ".yml":
	default:
		return "", fmt.Errorf("config file must have .yaml or .yml extension")
	}

	roots := DefaultConfigDirs
	if os.Getenv("WPROOF_DEV_MODE") == "1" {
		if wd, err := os.Getwd(); err == nil {
			roots = append(append([]string(nil), roots...), wd)
		}
	}
	for _, root := range roots {
		if within(root, real) {
			return real, nil
		}
	}
	return "", fmt.Errorf("config file must be in an allowed directory (tried: %s)", filepath.Dir(real))
}

// within reports whether path lies below dir
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// decodeFile reads the YAML document at path into cfg. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func decodeFile(path string, cfg *Config) error {
	// #nosec G304 -- path has been checked by resolveConfigPath
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error accessing config file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("error accessing config file: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("config path must be a regular file")
	}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}
