package overlay

import (
	"fmt"
	"regexp"
	"time"
)

// Position places the overlay container on the page
type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTopRight    Position = "top-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottomRight Position = "bottom-right"
	PositionCenter      Position = "center"
)

// Valid reports whether p is a known position
func (p Position) Valid() bool {
	switch p {
	case PositionTopLeft, PositionTopRight, PositionBottomLeft, PositionBottomRight, PositionCenter:
		return true
	}
	return false
}

// Animation selects how overlays enter and leave
type Animation string

const (
	AnimationSlide  Animation = "slide"
	AnimationFade   Animation = "fade"
	AnimationBounce Animation = "bounce"
)

// Valid reports whether a is a known animation
func (a Animation) Valid() bool {
	switch a {
	case AnimationSlide, AnimationFade, AnimationBounce:
		return true
	}
	return false
}

// Theme selects the overlay color scheme
type Theme string

const (
	ThemeModern  Theme = "modern"
	ThemeMinimal Theme = "minimal"
	ThemeBold    Theme = "bold"
	ThemeElegant Theme = "elegant"
	ThemeCustom  Theme = "custom"
)

// Valid reports whether t is a known theme
func (t Theme) Valid() bool {
	switch t {
	case ThemeModern, ThemeMinimal, ThemeBold, ThemeElegant, ThemeCustom:
		return true
	}
	return false
}

// CustomColors overrides the palette when the custom theme is selected
type CustomColors struct {
	Background  string
	Text        string
	Border      string
	BorderWidth int
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks the palette for validity
func (c CustomColors) Validate() error {
	const op = "CustomColors.Validate"

	for name, v := range map[string]string{"background": c.Background, "text": c.Text, "border": c.Border} {
		if !hexColor.MatchString(v) {
			return invalid(op, fmt.Sprintf("%s color %q is not a hex color", name, v))
		}
	}
	if c.BorderWidth < 0 {
		return invalid(op, "border width cannot be negative")
	}
	return nil
}

// Settings-level timing floors. The rotation engine itself only rejects
// timings it cannot schedule.
const (
	MinDuration = time.Second
	MinInterval = 2 * time.Second
)

// RotationConfig holds the timing and presentation of the overlay rotation
type RotationConfig struct {
	// Delay is the wait before the first overlay after page load
	Delay time.Duration
	// Duration is how long each overlay stays visible
	Duration time.Duration
	// Interval is the gap between one overlay leaving and the next appearing
	Interval     time.Duration
	Position     Position
	Animation    Animation
	Theme        Theme
	CustomColors *CustomColors
}

// DefaultRotationConfig returns the out-of-the-box rotation settings
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		Delay:     3 * time.Second,
		Duration:  5 * time.Second,
		Interval:  8 * time.Second,
		Position:  PositionBottomLeft,
		Animation: AnimationSlide,
		Theme:     ThemeModern,
		CustomColors: &CustomColors{
			Background:  "#667eea",
			Text:        "#ffffff",
			Border:      "#ffffff",
			BorderWidth: 1,
		},
	}
}

// WithDefaults fills zero-valued presentation fields from the defaults.
// Timing fields are left alone so an explicit zero delay survives.
func (c RotationConfig) WithDefaults() RotationConfig {
	d := DefaultRotationConfig()
	if c.Position == "" {
		c.Position = d.Position
	}
	if c.Animation == "" {
		c.Animation = d.Animation
	}
	if c.Theme == "" {
		c.Theme = d.Theme
	}
	if c.Theme == ThemeCustom && c.CustomColors == nil {
		c.CustomColors = d.CustomColors
	}
	return c
}

// Validate checks the rotation settings for validity
func (c RotationConfig) Validate() error {
	const op = "RotationConfig.Validate"

	if c.Delay < 0 {
		return invalid(op, "delay cannot be negative")
	}
	if c.Duration < MinDuration {
		return invalid(op, fmt.Sprintf("duration must be at least %s", MinDuration))
	}
	if c.Interval < MinInterval {
		return invalid(op, fmt.Sprintf("interval must be at least %s", MinInterval))
	}
	if !c.Position.Valid() {
		return invalid(op, fmt.Sprintf("unknown position %q", c.Position))
	}
	if !c.Animation.Valid() {
		return invalid(op, fmt.Sprintf("unknown animation %q", c.Animation))
	}
	if !c.Theme.Valid() {
		return invalid(op, fmt.Sprintf("unknown theme %q", c.Theme))
	}
	if c.Theme == ThemeCustom {
		if c.CustomColors == nil {
			return invalid(op, "custom theme requires custom colors")
		}
		if err := c.CustomColors.Validate(); err != nil {
			return err
		}
	}
	return nil
}
