package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-proof/internal/wproofd/errors"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
	"github.com/wrale/wrale-proof/internal/wproofd/testutil"
)

func TestRepository_LoadEmpty(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	_, err := NewRepository(db).Load(context.Background())
	assert.True(t, errors.IsNotFound(err))
}

func TestRepository_SaveAndLoad(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	s := settings.Defaults()
	s.Groups = []overlay.DisplayGroup{
		{ID: 0, Name: "Everyone"},
		{ID: 4, Name: "Docs", Description: "Documentation readers"},
	}
	s.Items = []overlay.ContentItem{
		{ID: 2, Type: overlay.ItemReview, Content: "Great", Author: "Sam", Active: true, Target: overlay.TargetNewWindow, Groups: []overlay.GroupID{"0", "4"}},
		{ID: 0, Type: overlay.ItemStat, Content: "99%", URL: "https://example.com", Target: overlay.TargetSameWindow, CTA: "See more", Active: false, Groups: []overlay.GroupID{}},
	}
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Enabled, got.Enabled)
	assert.Equal(t, s.Rotation, got.Rotation)
	assert.Equal(t, s.Groups, got.Groups)
	require.Len(t, got.Items, 2)
	assert.Equal(t, 2, got.Items[0].ID, "order is preserved")
	assert.Equal(t, s.Items[0], got.Items[0])
	assert.Equal(t, "See more", got.Items[1].CTA)
	assert.Empty(t, got.Items[1].Groups)

	// Replace with fewer rows
	s.Items = s.Items[:1]
	s.Groups = s.Groups[:1]
	s.Enabled = false
	require.NoError(t, repo.Save(ctx, s))

	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Len(t, got.Items, 1)
	assert.Len(t, got.Groups, 1)
}
