package engine

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
)

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration // dynamic tick rate updates while running

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	driver         animator.Driver
	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	maxDelta       float32
}

// Engine is a headless fixed-rate clock for animation. Every tick it runs the tick callback,
// then advances the driver by the measured delta, so callbacks can schedule transitions that
// take effect in the same tick.
type Engine interface {
	// Driver returns the driver advanced each tick.
	//
	// Returns:
	//   - animator.Driver: the driver, possibly nil
	Driver() animator.Driver

	// Run starts the tick loop in its own goroutine. Calling Run on a running engine is a no-op.
	Run()

	// Quit stops the tick loop. Safe to call multiple times.
	Quit()

	// Wait blocks until the tick loop has exited.
	Wait()

	// SetTickRate sets the tick rate in ticks per second.
	// If the engine is running, the change takes effect immediately.
	//
	// Parameters:
	//   - tps: target ticks per second, <= 0 selects 60
	SetTickRate(tps float64)

	// TickRate returns the current interval between ticks.
	TickRate() time.Duration

	// SetTickCallback registers the function called each tick before the driver update.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// Step runs a single tick synchronously with the given delta. It is intended for tests and
	// for hosts that own their own loop; it must not be mixed with Run.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Step(deltaTime float32)
}

var _ Engine = &engine{}

// NewEngine creates a new Engine ticking at 60Hz.
//
// Parameters:
//   - options: functional options for engine configuration (driver, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Driver() animator.Driver {
	return e.driver
}

func (e *engine) Run() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	select {
	case <-e.quitChannel:
		return
	default:
	}

	e.running = true
	e.wg.Add(1)
	go e.handleEngine(e.engineTickRate)
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.quitChannel)
	})
}

func (e *engine) Wait() {
	e.wg.Wait()
}

func (e *engine) SetTickRate(tps float64) {
	newRate := tickInterval(tps)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.engineTickRate = newRate
	if !e.running {
		return
	}

	// Replace any pending update that the loop has not consumed yet.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) TickRate() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engineTickRate
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) Step(deltaTime float32) {
	if e.maxDelta > 0 && deltaTime > e.maxDelta {
		deltaTime = e.maxDelta
	}

	e.mu.Lock()
	callback := e.tickCallback
	e.mu.Unlock()

	if callback != nil {
		callback(deltaTime)
	}
	if e.driver != nil {
		e.driver.Update(deltaTime)
	}
}

// handleEngine runs the fixed-rate tick loop until the quit channel is closed.
func (e *engine) handleEngine(rate time.Duration) {
	defer e.wg.Done()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case now := <-ticker.C:
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.Step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		}
	}
}

func tickInterval(tps float64) time.Duration {
	if tps <= 0 {
		tps = 60
	}
	return time.Duration(float64(time.Second) / tps)
}
