package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.CurrentContext)
	assert.Empty(t, cfg.Contexts)

	_, err = cfg.Current()
	assert.ErrorIs(t, err, ErrNoCurrentContext)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.Set("dev", &Context{Server: "http://localhost:8080"})
	cfg.Set("prod", &Context{Server: "https://proof.example.com", InsecureSkipVerify: true})
	assert.Equal(t, "dev", cfg.CurrentContext, "first context becomes current")
	require.NoError(t, cfg.Use("prod"))
	require.NoError(t, cfg.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", loaded.CurrentContext)
	require.Len(t, loaded.Contexts, 2)

	current, err := loaded.Current()
	require.NoError(t, err)
	assert.Equal(t, "prod", current.Name)
	assert.Equal(t, "https://proof.example.com", current.Server)
	assert.True(t, current.InsecureSkipVerify)
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	t.Setenv(PathEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
}

func TestContexts(t *testing.T) {
	cfg := &Config{}
	cfg.Set("dev", &Context{Server: "http://localhost:8080"})

	assert.ErrorIs(t, cfg.Use("missing"), ErrContextNotFound)
	require.NoError(t, cfg.Use("dev"))

	_, err := cfg.Lookup("missing")
	assert.ErrorIs(t, err, ErrContextNotFound)

	assert.ErrorIs(t, cfg.Delete("missing"), ErrContextNotFound)
	require.NoError(t, cfg.Delete("dev"))
	assert.Empty(t, cfg.CurrentContext, "removing the current context clears it")
}
