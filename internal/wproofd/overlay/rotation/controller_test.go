package rotation_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay/rotation"
)

type mockRotator struct {
	mock.Mock
}

func (m *mockRotator) Pause()        { m.Called() }
func (m *mockRotator) Resume()       { m.Called() }
func (m *mockRotator) ForceDismiss() { m.Called() }

func (m *mockRotator) Snapshot() rotation.Snapshot {
	args := m.Called()
	return args.Get(0).(rotation.Snapshot)
}

func showing(index int, item overlay.ContentItem, phase rotation.Phase) rotation.Snapshot {
	return rotation.Snapshot{Phase: phase, Index: index, Item: &item}
}

func TestController_Hover(t *testing.T) {
	item := overlay.ContentItem{ID: 4, Type: overlay.ItemNugget, Content: "fast", Active: true}

	tests := []struct {
		name   string
		snap   rotation.Snapshot
		index  int
		enter  bool
		expect string
	}{
		{name: "enter current", snap: showing(1, item, rotation.PhaseShowing), index: 1, enter: true, expect: "Pause"},
		{name: "leave current", snap: showing(1, item, rotation.PhasePaused), index: 1, enter: false, expect: "Resume"},
		{name: "enter stale index", snap: showing(2, item, rotation.PhaseShowing), index: 1, enter: true},
		{name: "leave while fading", snap: showing(1, item, rotation.PhaseFadingOut), index: 1, enter: false},
		{name: "enter while idle", snap: rotation.Snapshot{Phase: rotation.PhaseIdle, Index: 1}, index: 1, enter: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(mockRotator)
			r.On("Snapshot").Return(tt.snap)
			if tt.expect != "" {
				r.On(tt.expect).Return()
			}

			c := rotation.NewController(r, zerolog.Nop())
			if tt.enter {
				c.HoverEnter(tt.index)
			} else {
				c.HoverLeave(tt.index)
			}

			r.AssertExpectations(t)
			if tt.expect == "" {
				r.AssertNotCalled(t, "Pause")
				r.AssertNotCalled(t, "Resume")
			}
		})
	}
}

func TestController_Click(t *testing.T) {
	plain := overlay.ContentItem{ID: 1, Type: overlay.ItemReview, Content: "great", Active: true}
	linked := overlay.ContentItem{ID: 2, Type: overlay.ItemStat, Content: "99%", URL: "https://example.com/case", Active: true}
	sameWindow := linked
	sameWindow.Target = overlay.TargetSameWindow

	tests := []struct {
		name        string
		snap        rotation.Snapshot
		index       int
		wantResult  rotation.ClickResult
		wantDismiss bool
	}{
		{
			name:        "no url dismisses",
			snap:        showing(0, plain, rotation.PhaseShowing),
			wantResult:  rotation.ClickResult{Action: rotation.ClickDismissed},
			wantDismiss: true,
		},
		{
			name:        "paused without url dismisses",
			snap:        showing(0, plain, rotation.PhasePaused),
			wantResult:  rotation.ClickResult{Action: rotation.ClickDismissed},
			wantDismiss: true,
		},
		{
			name: "url navigates in new window",
			snap: showing(0, linked, rotation.PhaseShowing),
			wantResult: rotation.ClickResult{
				Action: rotation.ClickNavigate,
				URL:    "https://example.com/case",
				Target: overlay.TargetNewWindow,
			},
		},
		{
			name: "url navigates in same window",
			snap: showing(0, sameWindow, rotation.PhasePaused),
			wantResult: rotation.ClickResult{
				Action: rotation.ClickNavigate,
				URL:    "https://example.com/case",
				Target: overlay.TargetSameWindow,
			},
		},
		{
			name:       "stale overlay",
			snap:       showing(1, plain, rotation.PhaseShowing),
			wantResult: rotation.ClickResult{Action: rotation.ClickIgnored},
		},
		{
			name:       "fading overlay",
			snap:       showing(0, plain, rotation.PhaseFadingOut),
			wantResult: rotation.ClickResult{Action: rotation.ClickIgnored},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(mockRotator)
			r.On("Snapshot").Return(tt.snap)
			if tt.wantDismiss {
				r.On("ForceDismiss").Return()
			}

			c := rotation.NewController(r, zerolog.Nop())
			assert.Equal(t, tt.wantResult, c.Click(tt.index))

			r.AssertExpectations(t)
			if !tt.wantDismiss {
				r.AssertNotCalled(t, "ForceDismiss")
			}
		})
	}
}

func TestController_DrivesScheduler(t *testing.T) {
	s, clock, _ := newScheduler(t, testItems(2), testConfig())
	c := rotation.NewController(s, zerolog.Nop())

	s.Start()
	clock.Advance(testDelay + time.Second)

	c.HoverEnter(0)
	assert.Equal(t, rotation.PhasePaused, s.Snapshot().Phase)

	c.HoverLeave(1)
	assert.Equal(t, rotation.PhasePaused, s.Snapshot().Phase)

	c.HoverLeave(0)
	assert.Equal(t, rotation.PhaseShowing, s.Snapshot().Phase)

	result := c.Click(0)
	assert.Equal(t, rotation.ClickDismissed, result.Action)
	assert.Equal(t, rotation.PhaseFadingOut, s.Snapshot().Phase)

	assert.Equal(t, rotation.ClickIgnored, c.Click(0).Action)
}
