package delivery

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
)

type mockSelector struct {
	mock.Mock
}

func (m *mockSelector) Eligible(ctx context.Context, group string) (settings.Selection, error) {
	args := m.Called(ctx, group)
	return args.Get(0).(settings.Selection), args.Error(1)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Get(ctx context.Context, page string) (string, error) {
	args := m.Called(ctx, page)
	return args.String(0), args.Error(1)
}

func TestPlanner_Plan(t *testing.T) {
	sel := new(mockSelector)
	groups := new(mockResolver)

	items := []overlay.ContentItem{
		{ID: 0, Type: overlay.ItemReview, Content: "Great support", Author: "Ana", Active: true, Groups: []overlay.GroupID{"2"}},
		{ID: 4, Type: overlay.ItemStat, Content: "99.9% uptime", URL: "https://example.com", Target: overlay.TargetSameWindow, CTA: "See more", Active: true, Groups: []overlay.GroupID{"2"}},
	}
	groups.On("Get", mock.Anything, "pricing").Return("2", nil)
	sel.On("Eligible", mock.Anything, "2").Return(settings.Selection{
		Group:    "2",
		Rotation: overlay.DefaultRotationConfig(),
		Items:    items,
	}, nil)

	planner := NewPlanner(sel, groups, "Acme", zerolog.Nop())
	plan, err := planner.Plan(context.Background(), "pricing")
	require.NoError(t, err)

	require.Len(t, plan.Catalog, 2)
	assert.Equal(t, 0, plan.Catalog[0].Index)
	assert.False(t, plan.Catalog[0].ShowCTA)
	assert.Empty(t, plan.Catalog[0].LinkTarget)
	assert.Contains(t, plan.Catalog[0].Schema, `"@type":"Review"`)

	assert.Equal(t, 1, plan.Catalog[1].Index)
	assert.Equal(t, 4, plan.Catalog[1].Item.ID)
	assert.True(t, plan.Catalog[1].ShowCTA)
	assert.Equal(t, "_self", plan.Catalog[1].LinkTarget)

	eligible := plan.Eligible()
	assert.Equal(t, "EligibleItems", eligible.Kind)
	assert.Equal(t, "pricing", eligible.Page)
	assert.Equal(t, "2", eligible.Group)
	assert.Equal(t, int64(5000), eligible.Rotation.Duration)

	sel.AssertExpectations(t)
	groups.AssertExpectations(t)
}

func TestPlanner_PlanUnassignedPage(t *testing.T) {
	sel := new(mockSelector)
	groups := new(mockResolver)

	groups.On("Get", mock.Anything, "about").Return("", nil)
	sel.On("Eligible", mock.Anything, "").Return(settings.Selection{Rotation: overlay.DefaultRotationConfig()}, nil)

	plan, err := NewPlanner(sel, groups, "Acme", zerolog.Nop()).Plan(context.Background(), "about")
	require.NoError(t, err)
	assert.Empty(t, plan.Catalog)
	assert.Empty(t, plan.Eligible().Group)
}

func TestPlanner_PlanErrors(t *testing.T) {
	t.Run("group lookup", func(t *testing.T) {
		sel := new(mockSelector)
		groups := new(mockResolver)
		groups.On("Get", mock.Anything, "p").Return("", fmt.Errorf("redis down"))

		_, err := NewPlanner(sel, groups, "Acme", zerolog.Nop()).Plan(context.Background(), "p")
		assert.Error(t, err)
		sel.AssertNotCalled(t, "Eligible", mock.Anything, mock.Anything)
	})

	t.Run("selection", func(t *testing.T) {
		sel := new(mockSelector)
		groups := new(mockResolver)
		groups.On("Get", mock.Anything, "p").Return("1", nil)
		sel.On("Eligible", mock.Anything, "1").Return(settings.Selection{}, fmt.Errorf("db down"))

		_, err := NewPlanner(sel, groups, "Acme", zerolog.Nop()).Plan(context.Background(), "p")
		assert.Error(t, err)
	})
}
