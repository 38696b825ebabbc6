package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	d := 5 * time.Second

	assert.Equal(t, 0.0, Progress(-time.Second, d))
	assert.Equal(t, 0.0, Progress(0, d))
	assert.InDelta(t, 0.4, Progress(2*time.Second, d), 1e-9)
	assert.Equal(t, 1.0, Progress(d, d))
	assert.Equal(t, 1.0, Progress(2*d, d))
	assert.Equal(t, 1.0, Progress(time.Second, 0))
}

func TestProgress_MonotonicAndClamped(t *testing.T) {
	d := 5 * time.Second
	prev := -1.0
	for elapsed := -time.Second; elapsed <= 7*time.Second; elapsed += 10 * time.Millisecond {
		p := Progress(elapsed, d)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		assert.GreaterOrEqual(t, p, prev, "progress decreased at %s", elapsed)
		prev = p
	}
}

func TestDashOffset(t *testing.T) {
	assert.Equal(t, 0.0, DashOffset(-0.5))
	assert.Equal(t, 0.0, DashOffset(0))
	assert.InDelta(t, 25.0, DashOffset(0.25), 1e-9)
	assert.Equal(t, 100.0, DashOffset(1))
	assert.Equal(t, 100.0, DashOffset(3))
}
