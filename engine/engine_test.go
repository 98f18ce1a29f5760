package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T) (animator.AnimationState, *model.AnimationClip) {
	t.Helper()
	clip := &model.AnimationClip{Name: "idle", Duration: 1}
	s, err := animator.NewAnimationState(animator.NewStateData(&model.SkeletonData{Animations: []*model.AnimationClip{clip}}))
	require.NoError(t, err)
	s.SetAnimation(clip, true)
	return s, clip
}

func TestStep(t *testing.T) {
	s, _ := newState(t)
	d := animator.NewDriver(animator.WithWorkers(1))
	d.Add(s, nil)

	var seen []float32
	e := NewEngine(WithDriver(d), WithMaxDelta(0.1), WithTickCallback(func(dt float32) {
		seen = append(seen, dt)
	}))

	e.Step(0.05)
	e.Step(2)

	assert.Equal(t, []float32{0.05, 0.1}, seen)
	assert.InDelta(t, 0.15, s.Time(), 1e-6)
	assert.Same(t, d, e.Driver())
}

func TestTickRate(t *testing.T) {
	e := NewEngine(WithTickRate(120))
	assert.Equal(t, time.Second/120, e.TickRate())

	e.SetTickRate(0)
	assert.Equal(t, time.Second/60, e.TickRate())
}

func TestRunAndQuit(t *testing.T) {
	s, _ := newState(t)
	d := animator.NewDriver(animator.WithWorkers(1))
	d.Add(s, nil)

	var ticks atomic.Int32
	e := NewEngine(WithDriver(d), WithTickRate(500))
	e.SetTickCallback(func(float32) { ticks.Add(1) })

	e.Run()
	e.Run()
	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, 2*time.Second, time.Millisecond)
	e.SetTickRate(1000)

	e.Quit()
	e.Quit()
	e.Wait()

	n := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, ticks.Load(), "no ticks after Quit")
	assert.Greater(t, s.Time(), float32(0))

	e.Run()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, ticks.Load(), "a stopped engine does not restart")
}
