package overlay

import (
	"strconv"
	"strings"
)

// GroupID identifies an audience group. Group ids are small integers but the
// page association layer stores them as strings, so every comparison goes
// through NormalizeGroupID.
type GroupID string

// NormalizeGroupID returns the canonical form of a group id. Numeric ids are
// rendered in base 10 without padding, anything else is only trimmed.
func NormalizeGroupID(raw string) GroupID {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if n, err := strconv.Atoi(s); err == nil {
		return GroupID(strconv.Itoa(n))
	}
	return GroupID(s)
}

// GroupIDFromInt returns the canonical id for an integer group index
func GroupIDFromInt(id int) GroupID {
	return GroupID(strconv.Itoa(id))
}

// DisplayGroup is a named audience that pages are assigned to
type DisplayGroup struct {
	// ID is the group's stable index
	ID int
	// Name is the human-readable group name
	Name string
	// Description optionally explains who the group targets
	Description string
}

// GroupID returns the group's canonical string id
func (g DisplayGroup) GroupID() GroupID {
	return GroupIDFromInt(g.ID)
}

// Validate checks the group for validity
func (g DisplayGroup) Validate() error {
	if g.ID < 0 {
		return invalid("DisplayGroup.Validate", "group id cannot be negative")
	}
	if strings.TrimSpace(g.Name) == "" {
		return invalid("DisplayGroup.Validate", "group name is required")
	}
	return nil
}

// FilterEligible selects the items shown to selectedGroup, preserving order.
// An empty selectedGroup means the page has no audience assigned and always
// yields no items, even when active items exist.
func FilterEligible(items []ContentItem, selectedGroup string) []ContentItem {
	group := NormalizeGroupID(selectedGroup)
	if group == "" {
		return nil
	}

	var eligible []ContentItem
	for _, item := range items {
		if item.Eligible(group) {
			eligible = append(eligible, item)
		}
	}
	return eligible
}
