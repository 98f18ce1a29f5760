package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is the per-update workload reported to the Profiler.
type Stats struct {
	// States is the number of animation states driven this update.
	States int

	// Fading is the number of states that were crossfading after the update.
	Fading int

	// Elapsed is the wall time the update took.
	Elapsed time.Duration
}

// Profiler tracks animation update rate, workload and memory statistics.
// Outputs stats to its logger at a configurable interval.
type Profiler struct {
	logger         *log.Logger
	updateCount    int
	busy           time.Duration
	last           Stats
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	now            func() time.Time
}

// NewProfiler creates a new Profiler that logs to logger.
// Update interval defaults to 1 second. A nil logger uses log.Default().
//
// Parameters:
//   - logger: destination for the periodic stats line
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *log.Logger) *Profiler {
	if logger == nil {
		logger = log.Default()
	}
	return &Profiler{
		logger:         logger,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		now:            time.Now,
	}
}

// SetInterval changes how often the stats line is written. Values <= 0 are ignored.
//
// Parameters:
//   - d: the new logging interval
func (p *Profiler) SetInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// Tick should be called once per driver update with that update's stats.
// Logs statistics when the update interval has elapsed: updates per second, average update
// cost, bound and fading states, heap usage and allocation rate.
//
// Parameters:
//   - s: the stats of the update that just finished
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(s Stats) bool {
	p.updateCount++
	p.busy += s.Elapsed
	p.last = s

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	ups := float64(p.updateCount) / elapsed.Seconds()
	avg := p.busy / time.Duration(p.updateCount)

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	p.logger.Printf("[Animation] UPS: %.2f | Update: %s avg | States: %d | Fading: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s",
		ups, avg, s.States, s.Fading, allocMB, allocRateMB)

	p.updateCount = 0
	p.busy = 0
	p.lastTime = currentTime
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the stats passed to the most recent Tick.
func (p *Profiler) Last() Stats {
	return p.last
}
