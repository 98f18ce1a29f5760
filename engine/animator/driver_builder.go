package animator

import (
	"log"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// DriverBuilderOption is a functional option for configuring a Driver during construction.
type DriverBuilderOption func(*driver)

// WithWorkers is an option builder that sets how many goroutines share the per-frame work.
// One worker runs every pair inline on the calling goroutine. Values <= 0 keep the default.
//
// Parameters:
//   - n: the number of workers
//
// Returns:
//   - DriverBuilderOption: a function that applies the workers option to a driver
func WithWorkers(n int) DriverBuilderOption {
	return func(d *driver) {
		d.workers = common.Coalesce(max(n, 0), d.workers)
	}
}

// WithProfiling enables or disables the periodic update statistics log line.
//
// Parameters:
//   - enabled: if true, enables profiling output
//
// Returns:
//   - DriverBuilderOption: a function that applies the profiling option to a driver
func WithProfiling(enabled bool) DriverBuilderOption {
	return func(d *driver) {
		d.profilingEnabled = enabled
	}
}

// WithDriverLogger is an option builder that sets the logger used for profiling output.
//
// Parameters:
//   - logger: the destination logger, nil keeps log.Default()
//
// Returns:
//   - DriverBuilderOption: a function that applies the logger option to a driver
func WithDriverLogger(logger *log.Logger) DriverBuilderOption {
	return func(d *driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}
