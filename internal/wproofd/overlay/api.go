package overlay

import (
	"time"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
)

// ItemFromAPI converts a wire content item to the domain model
func ItemFromAPI(in v1alpha1.ContentItem) ContentItem {
	groups := make([]GroupID, 0, len(in.Groups))
	for _, g := range in.Groups {
		groups = append(groups, NormalizeGroupID(g))
	}
	return ContentItem{
		ID:      in.ID,
		Type:    ItemType(in.Type),
		Content: in.Content,
		Author:  in.Author,
		URL:     in.URL,
		Target:  Target(in.Target),
		CTA:     in.CTA,
		Active:  in.Active,
		Groups:  groups,
	}
}

// ItemToAPI converts a domain content item to its wire form
func ItemToAPI(in ContentItem) v1alpha1.ContentItem {
	groups := make([]string, 0, len(in.Groups))
	for _, g := range in.Groups {
		groups = append(groups, string(g))
	}
	return v1alpha1.ContentItem{
		ID:      in.ID,
		Type:    string(in.Type),
		Content: in.Content,
		Author:  in.Author,
		URL:     in.URL,
		Target:  string(in.Target),
		CTA:     in.CTA,
		Active:  in.Active,
		Groups:  groups,
	}
}

// ItemsToAPI converts a list of domain items
func ItemsToAPI(in []ContentItem) []v1alpha1.ContentItem {
	out := make([]v1alpha1.ContentItem, len(in))
	for i, item := range in {
		out[i] = ItemToAPI(item)
	}
	return out
}

// GroupFromAPI converts a wire display group to the domain model
func GroupFromAPI(in v1alpha1.DisplayGroup) DisplayGroup {
	return DisplayGroup{ID: in.ID, Name: in.Name, Description: in.Description}
}

// GroupToAPI converts a domain display group to its wire form
func GroupToAPI(in DisplayGroup) v1alpha1.DisplayGroup {
	return v1alpha1.DisplayGroup{ID: in.ID, Name: in.Name, Description: in.Description}
}

// RotationFromAPI converts wire rotation settings, given in milliseconds
func RotationFromAPI(in v1alpha1.RotationConfig) RotationConfig {
	out := RotationConfig{
		Delay:     time.Duration(in.Delay) * time.Millisecond,
		Duration:  time.Duration(in.Duration) * time.Millisecond,
		Interval:  time.Duration(in.Interval) * time.Millisecond,
		Position:  Position(in.Position),
		Animation: Animation(in.Animation),
		Theme:     Theme(in.Theme),
	}
	if in.CustomColors != nil {
		out.CustomColors = &CustomColors{
			Background:  in.CustomColors.Background,
			Text:        in.CustomColors.Text,
			Border:      in.CustomColors.Border,
			BorderWidth: in.CustomColors.BorderWidth,
		}
	}
	return out
}

// RotationToAPI converts domain rotation settings to milliseconds
func RotationToAPI(in RotationConfig) v1alpha1.RotationConfig {
	out := v1alpha1.RotationConfig{
		Delay:     in.Delay.Milliseconds(),
		Duration:  in.Duration.Milliseconds(),
		Interval:  in.Interval.Milliseconds(),
		Position:  string(in.Position),
		Animation: string(in.Animation),
		Theme:     string(in.Theme),
	}
	if in.CustomColors != nil {
		out.CustomColors = &v1alpha1.CustomColors{
			Background:  in.CustomColors.Background,
			Text:        in.CustomColors.Text,
			Border:      in.CustomColors.Border,
			BorderWidth: in.CustomColors.BorderWidth,
		}
	}
	return out
}
