// Package rotation implements the overlay rotation engine: a state machine
// that shows one eligible item at a time, counts it down, pauses on hover and
// replaces it with the next item after a gap.
package rotation

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/internal/wproofd/errors"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
)

// DefaultFadeDuration is how long an overlay takes to leave
const DefaultFadeDuration = 300 * time.Millisecond

// Option configures a Scheduler
type Option func(*Scheduler)

// WithPresenter sets the snapshot sink
func WithPresenter(p Presenter) Option {
	return func(s *Scheduler) {
		s.presenter = p
	}
}

// WithLogger sets the scheduler's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger.With().Str("component", "rotation").Logger()
	}
}

// WithTickInterval sets how often countdown progress is rendered
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.tickEvery = d
	}
}

// WithFadeDuration sets how long the fading out phase lasts
func WithFadeDuration(d time.Duration) Option {
	return func(s *Scheduler) {
		s.fade = d
	}
}

// Scheduler owns the rotation state of one page. It is not safe for
// concurrent use: every method and every timer callback must run on the same
// goroutine, which the loop clock guarantees.
type Scheduler struct {
	items     []overlay.ContentItem
	delay     time.Duration
	duration  time.Duration
	interval  time.Duration
	tickEvery time.Duration
	fade      time.Duration

	clock     Clock
	presenter Presenter
	logger    zerolog.Logger

	index             int
	phase             Phase
	started           bool
	stopped           bool
	startTime         time.Time
	pausedAccumulated time.Duration
	pauseStart        time.Time
	frozenElapsed     time.Duration

	// transition is the only timer allowed to move the phase forward; tick
	// only reports progress.
	transition Timer
	tick       Timer
}

// New creates a scheduler over the eligible items. An empty list is valid and
// yields a scheduler that never leaves the idle phase.
func New(items []overlay.ContentItem, cfg overlay.RotationConfig, clock Clock, opts ...Option) (*Scheduler, error) {
	const op = "Scheduler.New"

	if clock == nil {
		return nil, errors.NewError("INVALID_CONFIG", "a clock is required", op, errors.ErrInvalidConfig)
	}
	if cfg.Duration < time.Millisecond {
		return nil, errors.NewError("INVALID_CONFIG", "duration must be at least 1ms", op, errors.ErrInvalidConfig)
	}
	if cfg.Interval < 0 {
		return nil, errors.NewError("INVALID_CONFIG", "interval cannot be negative", op, errors.ErrInvalidConfig)
	}
	if cfg.Delay < 0 {
		return nil, errors.NewError("INVALID_CONFIG", "delay cannot be negative", op, errors.ErrInvalidConfig)
	}

	s := &Scheduler{
		items:     append([]overlay.ContentItem(nil), items...),
		delay:     cfg.Delay,
		duration:  cfg.Duration,
		interval:  cfg.Interval,
		tickEvery: overlay.DefaultTickInterval,
		fade:      DefaultFadeDuration,
		clock:     clock,
		presenter: PresenterFunc(func(Snapshot) {}),
		logger:    zerolog.Nop(),
		phase:     PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.tickEvery <= 0 {
		return nil, errors.NewError("INVALID_CONFIG", "tick interval must be positive", op, errors.ErrInvalidConfig)
	}
	if s.fade < 0 {
		return nil, errors.NewError("INVALID_CONFIG", "fade duration cannot be negative", op, errors.ErrInvalidConfig)
	}
	if s.presenter == nil {
		s.presenter = PresenterFunc(func(Snapshot) {})
	}

	return s, nil
}

// Len returns the number of eligible items
func (s *Scheduler) Len() int {
	return len(s.items)
}

// Start begins the rotation after the configured delay. Calling it again, or
// after Stop, does nothing.
func (s *Scheduler) Start() {
	if s.started || s.stopped {
		return
	}
	s.started = true

	if len(s.items) == 0 {
		s.logger.Debug().Msg("no eligible items, rotation stays idle")
		return
	}

	s.logger.Debug().
		Int("items", len(s.items)).
		Dur("delay", s.delay).
		Msg("rotation scheduled")
	s.arm(s.delay, s.showNext)
}

// Pause holds the countdown of the visible item. Only a showing item can be
// paused; other calls are ignored.
func (s *Scheduler) Pause() {
	if s.phase != PhaseShowing {
		return
	}

	s.cancelTimers()
	s.pauseStart = s.clock.Now()
	s.phase = PhasePaused
	s.render(TriggerPause)
}

// Resume restarts the countdown of a paused item with the time it had left.
// Calls while not paused are ignored.
func (s *Scheduler) Resume() {
	if s.phase != PhasePaused {
		return
	}

	s.foldPause()
	s.phase = PhaseShowing

	remaining := s.duration - s.elapsed()
	if remaining <= 0 {
		s.dismiss(TriggerExpire)
		return
	}

	s.render(TriggerResume)
	s.arm(remaining, s.expire)
	s.armTick()
}

// ForceDismiss removes the visible item early and moves on to the interval
// wait. A paused item is resumed first so accounting stays uniform. Calls
// while nothing is visible are ignored.
func (s *Scheduler) ForceDismiss() {
	switch s.phase {
	case PhasePaused:
		s.foldPause()
		s.phase = PhaseShowing
		s.dismiss(TriggerDismiss)
	case PhaseShowing:
		s.dismiss(TriggerDismiss)
	}
}

// Stop cancels all timers and parks the scheduler in the idle phase for good
func (s *Scheduler) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.cancelTimers()

	wasActive := s.phase != PhaseIdle
	s.phase = PhaseIdle
	s.pauseStart = time.Time{}
	if wasActive {
		s.render(TriggerStop)
	}
	s.logger.Debug().Int("index", s.index).Msg("rotation stopped")
}

// Snapshot returns the current rotation state
func (s *Scheduler) Snapshot() Snapshot {
	return s.snapshot("")
}

func (s *Scheduler) showNext() {
	s.phase = PhaseShowing
	s.startTime = s.clock.Now()
	s.pausedAccumulated = 0
	s.pauseStart = time.Time{}
	s.frozenElapsed = 0

	s.render(TriggerShow)
	s.arm(s.duration, s.expire)
	s.armTick()
}

func (s *Scheduler) expire() {
	s.dismiss(TriggerExpire)
}

func (s *Scheduler) dismiss(trigger Trigger) {
	s.frozenElapsed = s.elapsed()
	s.cancelTimers()
	s.phase = PhaseFadingOut
	s.render(trigger)
	s.arm(s.fade, s.advance)
}

func (s *Scheduler) advance() {
	s.index = (s.index + 1) % len(s.items)
	s.phase = PhaseIdle
	s.frozenElapsed = 0
	s.render(TriggerAdvance)
	s.arm(s.interval, s.showNext)
}

func (s *Scheduler) onTick() {
	s.tick = nil
	if s.phase != PhaseShowing {
		return
	}

	snap := s.render(TriggerTick)
	if snap.Progress < 1 {
		s.armTick()
	}
}

// arm replaces the transition timer. Callers cancel the previous one first.
// A presenter may stop the scheduler from inside a render, so nothing is
// armed once stopped.
func (s *Scheduler) arm(d time.Duration, next func()) {
	if s.stopped {
		return
	}
	s.transition = s.clock.AfterFunc(d, func() {
		s.transition = nil
		next()
	})
}

func (s *Scheduler) armTick() {
	if s.stopped {
		return
	}
	s.tick = s.clock.AfterFunc(s.tickEvery, s.onTick)
}

func (s *Scheduler) cancelTimers() {
	if s.transition != nil {
		s.transition.Stop()
		s.transition = nil
	}
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
}

func (s *Scheduler) foldPause() {
	s.pausedAccumulated += s.clock.Now().Sub(s.pauseStart)
	s.pauseStart = time.Time{}
}

func (s *Scheduler) elapsed() time.Duration {
	switch s.phase {
	case PhaseShowing:
		return s.clock.Now().Sub(s.startTime) - s.pausedAccumulated
	case PhasePaused:
		return s.pauseStart.Sub(s.startTime) - s.pausedAccumulated
	case PhaseFadingOut:
		return s.frozenElapsed
	}
	return 0
}

func (s *Scheduler) snapshot(trigger Trigger) Snapshot {
	snap := Snapshot{
		Phase:   s.phase,
		Index:   s.index,
		Trigger: trigger,
	}
	if len(s.items) == 0 || s.phase == PhaseIdle {
		return snap
	}

	item := s.items[s.index]
	snap.Item = &item
	snap.Elapsed = s.elapsed()
	snap.Progress = overlay.Progress(snap.Elapsed, s.duration)
	if s.phase != PhaseFadingOut && snap.Elapsed < s.duration {
		snap.Remaining = s.duration - snap.Elapsed
	}
	return snap
}

func (s *Scheduler) render(trigger Trigger) Snapshot {
	snap := s.snapshot(trigger)
	if trigger != TriggerTick {
		s.logger.Debug().
			Str("phase", string(snap.Phase)).
			Str("trigger", string(trigger)).
			Int("index", snap.Index).
			Dur("elapsed", snap.Elapsed).
			Msg("rotation transition")
	}
	s.presenter.Render(snap)
	return snap
}
