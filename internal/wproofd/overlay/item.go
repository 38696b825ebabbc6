// Package overlay implements the social proof overlay domain: content items,
// audience groups, rotation settings and the countdown model
package overlay

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/wrale/wrale-proof/internal/wproofd/errors"
)

// ItemType identifies what kind of social proof a content item carries
type ItemType string

const (
	// ItemReview is a customer review with an optional author
	ItemReview ItemType = "review"
	// ItemNugget is a short selling point
	ItemNugget ItemType = "nugget"
	// ItemFAQ is a frequently asked question
	ItemFAQ ItemType = "faq"
	// ItemStat is a headline statistic
	ItemStat ItemType = "stat"
)

// Valid reports whether t is a known item type
func (t ItemType) Valid() bool {
	switch t {
	case ItemReview, ItemNugget, ItemFAQ, ItemStat:
		return true
	}
	return false
}

// Target controls where a navigable item opens its link
type Target string

const (
	// TargetNewWindow opens the link in a new browsing context
	TargetNewWindow Target = "new-window"
	// TargetSameWindow replaces the current page
	TargetSameWindow Target = "same-window"
)

// Valid reports whether t is a known target, the empty target included
func (t Target) Valid() bool {
	switch t {
	case "", TargetNewWindow, TargetSameWindow:
		return true
	}
	return false
}

// HTMLTarget returns the anchor target attribute for t
func (t Target) HTMLTarget() string {
	if t == TargetSameWindow {
		return "_self"
	}
	return "_blank"
}

// MaxCTALength is the maximum call-to-action length in characters
const MaxCTALength = 20

// ContentItem is a single overlay snippet. Items are immutable once a page
// has loaded them; the rotation engine only reads them.
type ContentItem struct {
	// ID is the item's stable index in the settings
	ID int
	// Type identifies the kind of snippet
	Type ItemType
	// Content is the rich text body
	Content string
	// Author optionally attributes the snippet
	Author string
	// URL makes the item navigable when set
	URL string
	// Target controls where URL opens, new-window when empty
	Target Target
	// CTA is an optional call-to-action label shown on navigable items
	CTA string
	// Active toggles the item without deleting it
	Active bool
	// Groups lists the audience groups the item is shown to
	Groups []GroupID
}

// Navigable reports whether clicking the item follows a link
func (i ContentItem) Navigable() bool {
	return i.URL != ""
}

// LinkTarget returns the effective link target
func (i ContentItem) LinkTarget() Target {
	if i.Target == "" {
		return TargetNewWindow
	}
	return i.Target
}

// ShowsCTA reports whether the call-to-action label should be rendered
func (i ContentItem) ShowsCTA() bool {
	return i.Navigable() && i.CTA != ""
}

// InGroup reports whether the item belongs to group. Both sides are
// normalized so "2", " 2" and "02" all match an item stored with group 2.
func (i ContentItem) InGroup(group GroupID) bool {
	group = NormalizeGroupID(string(group))
	if group == "" {
		return false
	}
	for _, g := range i.Groups {
		if NormalizeGroupID(string(g)) == group {
			return true
		}
	}
	return false
}

// Eligible reports whether the item may be shown to group
func (i ContentItem) Eligible(group GroupID) bool {
	return i.Active && strings.TrimSpace(i.Content) != "" && i.InGroup(group)
}

// Validate checks the item for validity
func (i ContentItem) Validate() error {
	const op = "ContentItem.Validate"

	if !i.Type.Valid() {
		return invalid(op, fmt.Sprintf("unknown item type %q", i.Type))
	}
	if strings.TrimSpace(i.Content) == "" {
		return invalid(op, "item content is required")
	}
	if !i.Target.Valid() {
		return invalid(op, fmt.Sprintf("unknown link target %q", i.Target))
	}
	if utf8.RuneCountInString(i.CTA) > MaxCTALength {
		return invalid(op, fmt.Sprintf("call to action must be at most %d characters", MaxCTALength))
	}
	if i.URL != "" {
		if _, err := url.ParseRequestURI(i.URL); err != nil {
			return invalid(op, "invalid item URL")
		}
	}
	for _, g := range i.Groups {
		if NormalizeGroupID(string(g)) == "" {
			return invalid(op, "group ids cannot be empty")
		}
	}
	return nil
}

func invalid(op, msg string) error {
	return errors.NewError("INVALID_INPUT", msg, op, errors.ErrInvalidInput)
}
