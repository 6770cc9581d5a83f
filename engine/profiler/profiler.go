package profiler

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"
)

// Report summarizes one profiling interval.
type Report struct {
	// Frames is the number of frames counted in the interval.
	Frames int

	// FPS is Frames divided by the measured interval length.
	FPS float64

	// Elapsed is the measured interval length.
	Elapsed time.Duration
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// At every interval it reports to the callback, appends the frame count to the
// stats file (if any) and optionally logs memory usage.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now        func() time.Time
	logMemory  bool
	statsPath  string
	onReport   func(Report)
	statsError error
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Reset restarts the current interval from now with zero frames.
func (p *Profiler) Reset() {
	p.frameCount = 0
	p.lastTime = p.now()
}

// Tick should be called once per frame to track frame timing.
// When the update interval has elapsed the interval is reported and a new one begins.
//
// Returns:
//   - Report: the finished interval (zero value if none finished)
//   - bool: true if an interval finished this tick
func (p *Profiler) Tick() (Report, bool) {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	r := Report{
		Frames:  p.frameCount,
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		Elapsed: elapsed,
	}

	if p.logMemory {
		p.logMemoryStats(r, elapsed)
	}
	if p.statsPath != "" {
		p.statsError = AppendFrames(p.statsPath, r.Frames)
	}
	if p.onReport != nil {
		p.onReport(r)
	}

	p.frameCount = 0
	p.lastTime = currentTime
	return r, true
}

// StatsError returns the error of the most recent stats file append.
//
// Returns:
//   - error: the last append's error, or nil once an append succeeds
func (p *Profiler) StatsError() error {
	return p.statsError
}

// logMemoryStats logs fps along with heap usage, allocation rate and GC pauses.
func (p *Profiler) logMemoryStats(r Report, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	log.Printf("[Profiler] FPS: %.2f | Frames: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		r.FPS, r.Frames, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}

// WriteStartupReport truncates the stats file and writes the initialisation time to it
// as "Time taken: N" with N in milliseconds.
//
// Parameters:
//   - path: the stats file path
//   - took: time spent initialising
//
// Returns:
//   - error: error if the file cannot be written
func WriteStartupReport(path string, took time.Duration) error {
	line := fmt.Sprintf("Time taken: %d\n", took.Milliseconds())
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return fmt.Errorf("write startup report: %w", err)
	}
	return nil
}

// AppendFrames appends one frame count line to the stats file, creating it if needed.
//
// Parameters:
//   - path: the stats file path
//   - frames: the frame count to record
//
// Returns:
//   - error: error if the file cannot be opened or written
func AppendFrames(path string, frames int) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open stats file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", frames); err != nil {
		f.Close()
		return fmt.Errorf("append frames: %w", err)
	}
	return f.Close()
}
