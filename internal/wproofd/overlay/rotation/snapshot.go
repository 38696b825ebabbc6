package rotation

import (
	"time"

	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
)

// Phase is the scheduler's state for the item being shown
type Phase string

const (
	// PhaseIdle means nothing is visible
	PhaseIdle Phase = "IDLE"
	// PhaseShowing means the current item is visible and counting down
	PhaseShowing Phase = "SHOWING"
	// PhasePaused means the current item is visible with its countdown held
	PhasePaused Phase = "PAUSED"
	// PhaseFadingOut means the current item is leaving
	PhaseFadingOut Phase = "FADING_OUT"
)

// Visible reports whether an item is on screen in phase p
func (p Phase) Visible() bool {
	return p == PhaseShowing || p == PhasePaused || p == PhaseFadingOut
}

// Trigger names the event that produced a snapshot
type Trigger string

const (
	TriggerShow    Trigger = "show"
	TriggerTick    Trigger = "tick"
	TriggerPause   Trigger = "pause"
	TriggerResume  Trigger = "resume"
	TriggerExpire  Trigger = "expire"
	TriggerDismiss Trigger = "dismiss"
	TriggerAdvance Trigger = "advance"
	TriggerStop    Trigger = "stop"
)

// Snapshot is a read-only view of the rotation for the presentation layer
type Snapshot struct {
	// Phase is the current phase
	Phase Phase
	// Index is the current position in the eligible list. While idle between
	// items it already points at the next item to show.
	Index int
	// Item is the visible item, nil while idle
	Item *overlay.ContentItem
	// Progress is the countdown ratio in [0, 1]
	Progress float64
	// Elapsed is the visible time so far, pauses excluded
	Elapsed time.Duration
	// Remaining is the time left before natural dismissal
	Remaining time.Duration
	// Trigger names what produced the snapshot, empty for on-demand reads
	Trigger Trigger
}

// DashOffset returns the countdown arc offset for the snapshot
func (s Snapshot) DashOffset() float64 {
	return overlay.DashOffset(s.Progress)
}

// Presenter renders scheduler snapshots. Render is called on the loop and
// must not block.
type Presenter interface {
	Render(Snapshot)
}

// PresenterFunc adapts a function to the Presenter interface
type PresenterFunc func(Snapshot)

// Render calls f(s)
func (f PresenterFunc) Render(s Snapshot) {
	f(s)
}

// Presenters fans snapshots out to several presenters in order
func Presenters(ps ...Presenter) Presenter {
	return multiPresenter(ps)
}

type multiPresenter []Presenter

func (m multiPresenter) Render(s Snapshot) {
	for _, p := range m {
		if p != nil {
			p.Render(s)
		}
	}
}
