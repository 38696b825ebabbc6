package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-proof/internal/wproofd/errors"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
)

func TestRepository_LoadMissing(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "settings.yaml"))
	_, err := repo.Load(context.Background())
	assert.True(t, errors.IsNotFound(err))
}

func TestRepository_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	repo := NewRepository(path)
	ctx := context.Background()

	s := settings.Defaults()
	s.Rotation.Delay = 0
	s.Groups = []overlay.DisplayGroup{{ID: 0, Name: "Everyone"}}
	s.Items = []overlay.ContentItem{
		{ID: 0, Type: overlay.ItemFAQ, Content: "Q? A.", Active: true, Groups: []overlay.GroupID{"0"}},
	}
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Rotation, got.Rotation)
	assert.Equal(t, time.Duration(0), got.Rotation.Delay)
	assert.Equal(t, s.Groups, got.Groups)
	assert.Equal(t, s.Items, got.Items)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestRepository_LoadHandWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
enabled: true
rotation:
  delay: 1000
  duration: 4000
  interval: 6000
  position: top-right
  animation: fade
  theme: minimal
groups:
  - id: 2
    name: Pricing
items:
  - id: 7
    type: stat
    content: 10k teams
    active: true
    groups: ["02"]
`), 0o644))

	got, err := NewRepository(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, got.Rotation.Duration)
	assert.Equal(t, overlay.PositionTopRight, got.Rotation.Position)
	require.Len(t, got.Items, 1)
	assert.Equal(t, []overlay.GroupID{"2"}, got.Items[0].Groups)
}

func TestRepository_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items: [\n"), 0o644))

	_, err := NewRepository(path).Load(context.Background())
	assert.True(t, errors.IsInvalidInput(err))
}
