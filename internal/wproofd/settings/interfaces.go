package settings

import (
	"context"

	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
)

// Service defines the settings service interface
type Service interface {
	// Get returns the current settings
	Get(ctx context.Context) (Settings, error)
	// Save validates and replaces the whole configuration
	Save(ctx context.Context, s Settings) (Settings, error)
	// AddItem appends an item, assigning it the next free id
	AddItem(ctx context.Context, item overlay.ContentItem) (overlay.ContentItem, error)
	// RemoveItem deletes the item with id
	RemoveItem(ctx context.Context, id int) error
	// AddGroup appends a group, assigning it the next free id
	AddGroup(ctx context.Context, group overlay.DisplayGroup) (overlay.DisplayGroup, error)
	// RemoveGroup deletes a group and strips it from every item
	RemoveGroup(ctx context.Context, id int) error
	// Eligible returns what a page assigned to group rotates through
	Eligible(ctx context.Context, group string) (Selection, error)
}

// Repository persists the settings document. Load returns a not found error
// when nothing has been saved yet.
type Repository interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s Settings) error
}

// Selection is the eligible list for one audience group
type Selection struct {
	// Group is the normalized group id, empty when none was assigned
	Group overlay.GroupID
	// Rotation is the timing and presentation to rotate with
	Rotation overlay.RotationConfig
	// Items is the ordered eligible list
	Items []overlay.ContentItem
}
