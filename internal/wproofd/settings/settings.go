// Package settings manages the site-wide overlay configuration: the rotation
// timing, the content items and the audience groups they target.
package settings

import (
	"fmt"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/errors"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
)

// Settings is the complete overlay configuration
type Settings struct {
	Enabled  bool
	Rotation overlay.RotationConfig
	Items    []overlay.ContentItem
	Groups   []overlay.DisplayGroup
}

// Defaults returns the configuration of a fresh install
func Defaults() Settings {
	return Settings{
		Enabled:  true,
		Rotation: overlay.DefaultRotationConfig(),
	}
}

// Clone returns a deep copy of s
func (s Settings) Clone() Settings {
	out := s
	if s.Rotation.CustomColors != nil {
		colors := *s.Rotation.CustomColors
		out.Rotation.CustomColors = &colors
	}
	if s.Items != nil {
		out.Items = make([]overlay.ContentItem, len(s.Items))
		for i, item := range s.Items {
			item.Groups = append([]overlay.GroupID(nil), item.Groups...)
			out.Items[i] = item
		}
	}
	out.Groups = append([]overlay.DisplayGroup(nil), s.Groups...)
	return out
}

// Validate checks the whole configuration, including id uniqueness
func (s Settings) Validate() error {
	const op = "Settings.Validate"

	if err := s.Rotation.Validate(); err != nil {
		return err
	}

	seen := make(map[int]bool, len(s.Items))
	for _, item := range s.Items {
		if seen[item.ID] {
			return errors.NewError("INVALID_INPUT", fmt.Sprintf("duplicate item id %d", item.ID), op, errors.ErrInvalidInput)
		}
		seen[item.ID] = true
		if item.ID < 0 {
			return errors.NewError("INVALID_INPUT", "item id cannot be negative", op, errors.ErrInvalidInput)
		}
		if err := item.Validate(); err != nil {
			return err
		}
	}

	seen = make(map[int]bool, len(s.Groups))
	for _, group := range s.Groups {
		if seen[group.ID] {
			return errors.NewError("INVALID_INPUT", fmt.Sprintf("duplicate group id %d", group.ID), op, errors.ErrInvalidInput)
		}
		seen[group.ID] = true
		if err := group.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Group returns the group with id
func (s Settings) Group(id int) (overlay.DisplayGroup, bool) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return overlay.DisplayGroup{}, false
}

func (s Settings) nextItemID() int {
	next := 0
	for _, item := range s.Items {
		if item.ID >= next {
			next = item.ID + 1
		}
	}
	return next
}

func (s Settings) nextGroupID() int {
	next := 0
	for _, g := range s.Groups {
		if g.ID >= next {
			next = g.ID + 1
		}
	}
	return next
}

// FromAPI converts the wire representation
func FromAPI(in v1alpha1.Settings) Settings {
	out := Settings{
		Enabled:  in.Enabled,
		Rotation: overlay.RotationFromAPI(in.Rotation),
	}
	for _, item := range in.Items {
		out.Items = append(out.Items, overlay.ItemFromAPI(item))
	}
	for _, g := range in.Groups {
		out.Groups = append(out.Groups, overlay.GroupFromAPI(g))
	}
	return out
}

// ToAPI converts to the wire representation
func ToAPI(in Settings) v1alpha1.Settings {
	out := v1alpha1.Settings{
		TypeMeta: v1alpha1.NewTypeMeta("Settings"),
		Enabled:  in.Enabled,
		Rotation: overlay.RotationToAPI(in.Rotation),
		Items:    overlay.ItemsToAPI(in.Items),
		Groups:   make([]v1alpha1.DisplayGroup, 0, len(in.Groups)),
	}
	for _, g := range in.Groups {
		out.Groups = append(out.Groups, overlay.GroupToAPI(g))
	}
	return out
}
