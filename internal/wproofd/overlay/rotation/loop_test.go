package rotation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay/rotation"
)

func TestLoop_RunsTasksInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := rotation.NewLoop(8)
	go loop.Run(ctx)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, loop.Post(func() { got = append(got, i) }))
	}
	require.True(t, loop.Do(func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoop_ClosedRejectsWork(t *testing.T) {
	loop := rotation.NewLoop(1)
	loop.Close()
	loop.Close()

	assert.False(t, loop.Post(func() {}))
	assert.False(t, loop.Do(func() {}))

	select {
	case <-loop.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestLoop_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := rotation.NewLoop(1)

	finished := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(finished)
	}()

	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.False(t, loop.Post(func() {}))
}

func TestLoopClock_StoppedTimerNeverFires(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := rotation.NewLoop(8)
	go loop.Run(ctx)
	clock := rotation.NewLoopClock(loop)

	fired := make(chan struct{}, 1)
	var timer rotation.Timer
	require.True(t, loop.Do(func() {
		timer = clock.AfterFunc(20*time.Millisecond, func() { fired <- struct{}{} })
	}))
	require.True(t, loop.Do(func() {
		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())
	}))

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLoopClock_DrivesScheduler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := rotation.NewLoop(64)
	go loop.Run(ctx)

	shown := make(chan int, 16)
	presenter := rotation.PresenterFunc(func(s rotation.Snapshot) {
		if s.Trigger == rotation.TriggerShow {
			shown <- s.Index
		}
	})

	cfg := overlay.DefaultRotationConfig()
	cfg.Delay = 0
	cfg.Duration = 30 * time.Millisecond
	cfg.Interval = 0

	s, err := rotation.New(testItems(2), cfg, rotation.NewLoopClock(loop),
		rotation.WithPresenter(presenter),
		rotation.WithTickInterval(5*time.Millisecond),
		rotation.WithFadeDuration(0),
	)
	require.NoError(t, err)
	require.True(t, loop.Do(s.Start))

	for _, want := range []int{0, 1, 0} {
		select {
		case got := <-shown:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("item %d never shown", want)
		}
	}

	require.True(t, loop.Do(s.Stop))
}
