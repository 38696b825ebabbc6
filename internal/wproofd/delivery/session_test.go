package delivery

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay/rotation"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay/rotation/rotationtest"
)

// newSlowSession returns a session whose send buffer holds a single frame and
// whose scheduler runs on a manual clock
func newSlowSession(t *testing.T) (*session, *rotationtest.Clock) {
	t.Helper()

	clock := rotationtest.NewClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	sess := &session{
		id:     uuid.New(),
		page:   "42",
		send:   make(chan []byte, 1),
		logger: zerolog.Nop(),
	}

	cfg := overlay.DefaultRotationConfig()
	cfg.Delay = time.Second

	scheduler, err := rotation.New([]overlay.ContentItem{plainItem, linkItem}, cfg, clock,
		rotation.WithPresenter(sess),
		rotation.WithTickInterval(time.Hour),
	)
	require.NoError(t, err)
	sess.scheduler = scheduler
	sess.controller = rotation.NewController(scheduler, zerolog.Nop())
	return sess, clock
}

func decodeFrame(t *testing.T, data []byte) v1alpha1.StreamMessage {
	t.Helper()
	var msg v1alpha1.StreamMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestSession_DropsTicksWhenBehind(t *testing.T) {
	sess, clock := newSlowSession(t)
	sess.scheduler.Start()
	clock.Advance(time.Second)
	require.Len(t, sess.send, 1, "show frame queued")

	sess.Render(rotation.Snapshot{Phase: rotation.PhaseShowing, Trigger: rotation.TriggerTick})

	assert.False(t, sess.closed)
	assert.Len(t, sess.send, 1)
	assert.Equal(t, rotation.PhaseShowing, sess.scheduler.Snapshot().Phase)
}

func TestSession_ClosesWhenTransitionCannotBeQueued(t *testing.T) {
	tests := []struct {
		name     string
		interact func(*session)
	}{
		{
			name:     "pause",
			interact: func(s *session) { s.handle(v1alpha1.Interaction{Type: v1alpha1.InteractionHoverEnter, Index: 0}) },
		},
		{
			name:     "click",
			interact: func(s *session) { s.handle(v1alpha1.Interaction{Type: v1alpha1.InteractionClick, Index: 0}) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, clock := newSlowSession(t)
			sess.scheduler.Start()
			clock.Advance(time.Second)
			require.Len(t, sess.send, 1)

			assert.NotPanics(t, func() { tt.interact(sess) })

			assert.True(t, sess.closed)
			assert.Equal(t, rotation.PhaseIdle, sess.scheduler.Snapshot().Phase)
			assert.Zero(t, clock.Pending())

			frame, ok := <-sess.send
			require.True(t, ok)
			msg := decodeFrame(t, frame)
			require.NotNil(t, msg.Snapshot)
			assert.Equal(t, string(rotation.TriggerShow), msg.Snapshot.Trigger)

			_, ok = <-sess.send
			assert.False(t, ok, "send is closed")

			assert.NotPanics(t, sess.shutdown)
			clock.Advance(time.Hour)
			assert.Zero(t, clock.Pending())
		})
	}
}
