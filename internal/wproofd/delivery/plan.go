// Package delivery streams the overlay rotation of a page to the browser.
// Every websocket connection gets its own event loop and scheduler that live
// exactly as long as the connection.
package delivery

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay/schema"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
)

// Selector returns the eligible items of an audience group
type Selector interface {
	Eligible(ctx context.Context, group string) (settings.Selection, error)
}

// GroupResolver returns the audience group assigned to a page
type GroupResolver interface {
	Get(ctx context.Context, page string) (string, error)
}

// Plan is everything a page session rotates through
type Plan struct {
	Page      string
	Selection settings.Selection
	Catalog   []v1alpha1.CatalogItem
}

// Planner resolves pages to plans
type Planner struct {
	selector Selector
	groups   GroupResolver
	schema   *schema.Generator
	logger   zerolog.Logger
}

// NewPlanner creates a planner. Items are described with JSON-LD naming
// siteName as the organization.
func NewPlanner(selector Selector, groups GroupResolver, siteName string, logger zerolog.Logger) *Planner {
	return &Planner{
		selector: selector,
		groups:   groups,
		schema:   schema.NewGenerator(siteName),
		logger:   logger.With().Str("component", "planner").Logger(),
	}
}

// Plan resolves the group of page and its eligible items
func (p *Planner) Plan(ctx context.Context, page string) (*Plan, error) {
	group, err := p.groups.Get(ctx, page)
	if err != nil {
		return nil, err
	}

	sel, err := p.selector.Eligible(ctx, group)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Page:      page,
		Selection: sel,
		Catalog:   make([]v1alpha1.CatalogItem, 0, len(sel.Items)),
	}
	for i, item := range sel.Items {
		plan.Catalog = append(plan.Catalog, p.catalogItem(i, item))
	}

	p.logger.Debug().
		Str("page", page).
		Str("group", string(sel.Group)).
		Int("items", len(sel.Items)).
		Msg("page planned")
	return plan, nil
}

func (p *Planner) catalogItem(index int, item overlay.ContentItem) v1alpha1.CatalogItem {
	out := v1alpha1.CatalogItem{
		Index:   index,
		Item:    overlay.ItemToAPI(item),
		ShowCTA: item.ShowsCTA(),
	}
	if item.Navigable() {
		out.LinkTarget = item.LinkTarget().HTMLTarget()
	}

	markup, err := p.schema.Markup(item)
	if err != nil {
		p.logger.Warn().Err(err).Int("item", item.ID).Msg("schema markup skipped")
	}
	out.Schema = markup
	return out
}

// Eligible returns the wire form of plan for previews
func (plan *Plan) Eligible() v1alpha1.EligibleItems {
	return v1alpha1.EligibleItems{
		TypeMeta: v1alpha1.NewTypeMeta("EligibleItems"),
		Page:     plan.Page,
		Group:    string(plan.Selection.Group),
		Rotation: overlay.RotationToAPI(plan.Selection.Rotation),
		Items:    plan.Catalog,
	}
}

// catalogMessage is the first frame of every session
func (plan *Plan) catalogMessage() *v1alpha1.OverlayCatalog {
	return &v1alpha1.OverlayCatalog{
		Group:    string(plan.Selection.Group),
		Rotation: overlay.RotationToAPI(plan.Selection.Rotation),
		Items:    plan.Catalog,
	}
}
