package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often the profiler reports.
//
// Parameters:
//   - interval: the report interval (ignored if not positive)
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithClock replaces time.Now as the profiler's time source.
//
// Parameters:
//   - now: the clock function
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// WithStatsFile appends every reported frame count to the file at path.
//
// Parameters:
//   - path: the stats file path ("" disables)
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithStatsFile(path string) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.statsPath = path
	}
}

// WithReportCallback sets the function called with every finished interval.
//
// Parameters:
//   - callback: function receiving the report
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithReportCallback(callback func(Report)) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.onReport = callback
	}
}

// WithMemoryStats enables logging of heap and GC statistics at every report.
//
// Parameters:
//   - enabled: whether to log memory statistics
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithMemoryStats(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logMemory = enabled
	}
}
