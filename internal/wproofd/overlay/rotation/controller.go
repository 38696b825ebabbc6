package rotation

import (
	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
)

// Rotator is the part of the scheduler the controller drives
type Rotator interface {
	Pause()
	Resume()
	ForceDismiss()
	Snapshot() Snapshot
}

// ClickAction tells the page what to do with a click
type ClickAction string

const (
	// ClickNavigate means the click must not be intercepted
	ClickNavigate ClickAction = "NAVIGATE"
	// ClickDismissed means the overlay was dismissed early
	ClickDismissed ClickAction = "DISMISSED"
	// ClickIgnored means the click did not hit the current overlay
	ClickIgnored ClickAction = "IGNORED"
)

// ClickResult is the outcome of a click on an overlay
type ClickResult struct {
	Action ClickAction
	URL    string
	Target overlay.Target
}

// Controller maps page pointer events on overlays to scheduler calls.
// Events that refer to an overlay other than the current one are stale
// (it has already faded out) and are dropped.
type Controller struct {
	rotator Rotator
	logger  zerolog.Logger
}

// NewController creates a controller driving r
func NewController(r Rotator, logger zerolog.Logger) *Controller {
	return &Controller{
		rotator: r,
		logger:  logger.With().Str("component", "interaction").Logger(),
	}
}

// HoverEnter pauses the countdown of the overlay at index
func (c *Controller) HoverEnter(index int) {
	if _, ok := c.current(index); !ok {
		return
	}
	c.rotator.Pause()
}

// HoverLeave resumes the countdown of the overlay at index
func (c *Controller) HoverLeave(index int) {
	if _, ok := c.current(index); !ok {
		return
	}
	c.rotator.Resume()
}

// Click handles a click on the overlay at index. Navigable overlays let the
// link through untouched; the rest are dismissed immediately.
func (c *Controller) Click(index int) ClickResult {
	snap, ok := c.current(index)
	if !ok {
		return ClickResult{Action: ClickIgnored}
	}

	if snap.Item.Navigable() {
		c.logger.Debug().Int("index", index).Str("url", snap.Item.URL).Msg("overlay link followed")
		return ClickResult{
			Action: ClickNavigate,
			URL:    snap.Item.URL,
			Target: snap.Item.LinkTarget(),
		}
	}

	c.rotator.ForceDismiss()
	return ClickResult{Action: ClickDismissed}
}

func (c *Controller) current(index int) (Snapshot, bool) {
	snap := c.rotator.Snapshot()
	if snap.Item == nil || snap.Index != index {
		return snap, false
	}
	if snap.Phase != PhaseShowing && snap.Phase != PhasePaused {
		return snap, false
	}
	return snap, true
}
