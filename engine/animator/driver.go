package animator

import (
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
)

// binding pairs an AnimationState with the skeleton it poses.
type binding struct {
	state AnimationState
	skel  *model.Skeleton
}

// driver is the implementation of the Driver interface.
type driver struct {
	mu *sync.Mutex

	bindings map[uint64]binding
	nextID   uint64

	workers int
	pool    worker.DynamicWorkerPool

	profilingEnabled bool
	profiler         *profiler.Profiler
	logger           *log.Logger
}

// Driver runs the per-frame update for many animated entities.
//
// Each registered AnimationState is paired with the skeleton it owns. Update advances every
// state, applies its pose and refreshes the skeleton's world transforms. Pairs are independent,
// so the work is spread over a persistent worker pool; any single pair is still touched by
// exactly one goroutine per frame, which preserves the single-owner contract of AnimationState.
//
// Callers must not drive a registered state or skeleton themselves while Update is running.
type Driver interface {
	// Add registers a state and the skeleton it poses.
	//
	// Parameters:
	//   - state: the animation state to drive
	//   - skel: the skeleton the state applies to
	//
	// Returns:
	//   - uint64: an id used to remove the pair later
	Add(state AnimationState, skel *model.Skeleton) uint64

	// Remove unregisters a pair.
	//
	// Parameters:
	//   - id: the id returned by Add
	//
	// Returns:
	//   - bool: true if the pair was registered
	Remove(id uint64) bool

	// Len returns the number of registered pairs.
	Len() int

	// Workers returns the configured worker count.
	Workers() int

	// Update advances every registered state by delta, applies it to its skeleton and updates
	// the skeleton's world transforms. Returns once every pair has been processed.
	//
	// Parameters:
	//   - delta: elapsed time since the last update in seconds
	Update(delta float32)
}

var _ Driver = &driver{}

// NewDriver creates a Driver. The worker pool is sized after options are applied and defaults
// to one worker per CPU minus one, with a minimum of one.
//
// Parameters:
//   - options: functional options to configure the driver
//
// Returns:
//   - Driver: the new driver
func NewDriver(options ...DriverBuilderOption) Driver {
	d := &driver{
		mu:       &sync.Mutex{},
		bindings: make(map[uint64]binding),
		nextID:   1,
		workers:  max(runtime.NumCPU()-1, 1),
		logger:   log.Default(),
	}
	for _, opt := range options {
		opt(d)
	}

	if d.workers > 1 {
		d.pool = worker.NewDynamicWorkerPool(d.workers, 256, 1*time.Second)
	}
	if d.profilingEnabled {
		d.profiler = profiler.NewProfiler(d.logger)
	}
	return d
}

func (d *driver) Add(state AnimationState, skel *model.Skeleton) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.bindings[id] = binding{state: state, skel: skel}
	return id
}

func (d *driver) Remove(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.bindings[id]; !ok {
		return false
	}
	delete(d.bindings, id)
	return true
}

func (d *driver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.bindings)
}

func (d *driver) Workers() int {
	return d.workers
}

func (d *driver) Update(delta float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()

	if d.pool == nil || len(d.bindings) < 2 {
		for _, b := range d.bindings {
			step(b, delta)
		}
	} else {
		// Workers persist across frames; the WaitGroup is the per-frame barrier.
		var wg sync.WaitGroup
		taskID := 0
		for _, b := range d.bindings {
			wg.Add(1)
			bCap := b
			id := taskID
			taskID++
			d.pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					step(bCap, delta)
					return nil, nil
				},
			})
		}
		wg.Wait()
	}

	if d.profiler != nil {
		fading := 0
		for _, b := range d.bindings {
			if b.state.Phase() == PhaseFading {
				fading++
			}
		}
		d.profiler.Tick(profiler.Stats{
			States:  len(d.bindings),
			Fading:  fading,
			Elapsed: time.Since(start),
		})
	}
}

// step runs one frame for a single pair.
func step(b binding, delta float32) {
	b.state.Update(delta)
	if b.skel == nil {
		return
	}
	b.state.Apply(b.skel)
	b.skel.UpdateWorldTransforms()
}
