package profiler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	var reports []Report
	p := NewProfiler(
		WithClock(clock.now),
		WithReportCallback(func(r Report) { reports = append(reports, r) }),
	)

	for i := 0; i < 49; i++ {
		clock.advance(20 * time.Millisecond)
		_, done := p.Tick()
		require.False(t, done, "frame %d", i)
	}
	clock.advance(20 * time.Millisecond)
	r, done := p.Tick()
	require.True(t, done)

	assert.Equal(t, 50, r.Frames)
	assert.InDelta(t, 50, r.FPS, 1e-9)
	assert.Equal(t, time.Second, r.Elapsed)
	require.Len(t, reports, 1)
	assert.Equal(t, r, reports[0])

	clock.advance(20 * time.Millisecond)
	_, done = p.Tick()
	assert.False(t, done, "a new interval starts after a report")
}

func TestStatsFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fps.txt")
	require.NoError(t, WriteStartupReport(path, 1500*time.Millisecond))

	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithStatsFile(path), WithInterval(500*time.Millisecond))
	for i := 0; i < 2; i++ {
		p.Tick()
		p.Tick()
		clock.advance(500 * time.Millisecond)
		p.Tick()
	}
	require.NoError(t, p.StatsError())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Time taken: 1500\n3\n3\n", string(data))
}

func TestWriteStartupReportTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fps.txt")
	require.NoError(t, os.WriteFile(path, []byte("old contents\n"), 0o644))
	require.NoError(t, WriteStartupReport(path, 42*time.Millisecond))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Time taken: 42\n", string(data))
}

func TestStatsErrorIsRecorded(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	bad := filepath.Join(t.TempDir(), "missing", "fps.txt")
	p := NewProfiler(WithClock(clock.now), WithStatsFile(bad))
	clock.advance(2 * time.Second)
	_, done := p.Tick()
	assert.True(t, done)
	assert.Error(t, p.StatsError())

	require.NoError(t, os.MkdirAll(filepath.Dir(bad), 0o755))
	clock.advance(2 * time.Second)
	_, done = p.Tick()
	assert.True(t, done)
	assert.NoError(t, p.StatsError())
}

func TestResetAndMemoryStats(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithMemoryStats(true), WithInterval(-1))
	p.Tick()
	clock.advance(900 * time.Millisecond)
	p.Reset()
	clock.advance(900 * time.Millisecond)
	_, done := p.Tick()
	assert.False(t, done)

	clock.advance(200 * time.Millisecond)
	r, done := p.Tick()
	assert.True(t, done)
	assert.Equal(t, 2, r.Frames)
}
