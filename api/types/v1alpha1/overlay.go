package v1alpha1

// ContentItem is a social proof snippet shown as an overlay
type ContentItem struct {
	// ID is the item's stable index
	ID int `json:"id" yaml:"id"`
	// Type is one of review, nugget, faq or stat
	Type string `json:"type" yaml:"type"`
	// Content is the rich text body
	Content string `json:"content" yaml:"content"`
	// Author optionally attributes the snippet
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
	// URL makes the overlay a link when set
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Target is new-window (default) or same-window
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	// CTA is an optional call-to-action label of at most 20 characters
	CTA string `json:"cta,omitempty" yaml:"cta,omitempty"`
	// Active toggles the item without deleting it
	Active bool `json:"active" yaml:"active"`
	// Groups lists the ids of the audience groups the item is shown to
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// DisplayGroup is an audience that pages are assigned to
type DisplayGroup struct {
	// ID is the group's stable index
	ID int `json:"id" yaml:"id"`
	// Name is the human-readable group name
	Name string `json:"name" yaml:"name"`
	// Description optionally explains who the group targets
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CustomColors overrides the palette for the custom theme
type CustomColors struct {
	Background  string `json:"background" yaml:"background"`
	Text        string `json:"text" yaml:"text"`
	Border      string `json:"border" yaml:"border"`
	BorderWidth int    `json:"borderWidth" yaml:"borderWidth"`
}

// RotationConfig holds rotation timing in milliseconds and presentation options
type RotationConfig struct {
	// Delay is the wait before the first overlay in milliseconds
	Delay int64 `json:"delay" yaml:"delay"`
	// Duration is how long each overlay stays visible in milliseconds
	Duration int64 `json:"duration" yaml:"duration"`
	// Interval is the gap between overlays in milliseconds
	Interval     int64         `json:"interval" yaml:"interval"`
	Position     string        `json:"position" yaml:"position"`
	Animation    string        `json:"animation" yaml:"animation"`
	Theme        string        `json:"theme" yaml:"theme"`
	CustomColors *CustomColors `json:"customColors,omitempty" yaml:"customColors,omitempty"`
}

// Settings is the complete overlay configuration
type Settings struct {
	// TypeMeta describes the versioning of this object
	TypeMeta `json:",inline" yaml:",inline"`

	// Enabled switches overlays on or off site-wide
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Rotation holds timing and presentation
	Rotation RotationConfig `json:"rotation" yaml:"rotation"`
	// Items is the ordered list of content items
	Items []ContentItem `json:"items" yaml:"items"`
	// Groups is the list of audience groups
	Groups []DisplayGroup `json:"groups" yaml:"groups"`
}

// PageGroup assigns an audience group to a page
type PageGroup struct {
	// TypeMeta describes the versioning of this object
	TypeMeta `json:",inline"`

	// Page identifies the page, e.g. a post id or a path
	Page string `json:"page"`
	// Group is the assigned group id, empty meaning no overlays
	Group string `json:"group"`
}

// EligibleItems lists the items a page will rotate through
type EligibleItems struct {
	// TypeMeta describes the versioning of this object
	TypeMeta `json:",inline"`

	Page     string         `json:"page"`
	Group    string         `json:"group"`
	Rotation RotationConfig `json:"rotation"`
	Items    []CatalogItem  `json:"items"`
}
