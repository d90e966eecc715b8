package progress

import (
	"sync"
	"time"
)

// DefaultWindow is the number of speed samples averaged by a Tracker.
const DefaultWindow = 5

// Stats is a point-in-time view of a transfer.
type Stats struct {
	BytesDone int64
	Total     int64
	Speed     float64 // bytes per second
	ETA       time.Duration
	ETAKnown  bool
	Percent   float64
}

// Tracker derives throughput from a sliding window of instantaneous speeds.
// One tracker belongs to one in-flight transfer.
type Tracker struct {
	mu        sync.Mutex
	done      int64
	lastBytes int64
	lastAt    time.Time
	samples   []float64
	next      int
	full      bool
	now       func() time.Time
}

// NewTracker starts tracking from startBytes, which is non-zero when a
// transfer resumes.
func NewTracker(startBytes int64) *Tracker {
	return NewTrackerWithClock(startBytes, time.Now)
}

// NewTrackerWithClock returns a tracker with a custom time source (for tests).
func NewTrackerWithClock(startBytes int64, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		done:      startBytes,
		lastBytes: startBytes,
		lastAt:    now(),
		samples:   make([]float64, DefaultWindow),
		now:       now,
	}
}

// Update records the cumulative number of bytes transferred so far.
func (t *Tracker) Update(bytesSoFar int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.done = bytesSoFar
	now := t.now()
	deltaBytes := bytesSoFar - t.lastBytes
	deltaTime := now.Sub(t.lastAt).Seconds()

	if deltaBytes < 0 {
		// offsets were reset (restart from zero)
		t.lastBytes = bytesSoFar
		t.lastAt = now
		return
	}
	if deltaTime <= 0 {
		return
	}

	t.samples[t.next] = float64(deltaBytes) / deltaTime
	t.next = (t.next + 1) % len(t.samples)
	if t.next == 0 {
		t.full = true
	}
	t.lastBytes = bytesSoFar
	t.lastAt = now
}

// Speed is the mean of the window in bytes per second, 0 without samples.
func (t *Tracker) Speed() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.speedLocked()
}

func (t *Tracker) speedLocked() float64 {
	count := t.next
	if t.full {
		count = len(t.samples)
	}
	if count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < count; i++ {
		sum += t.samples[i]
	}
	return sum / float64(count)
}

// ETA returns remaining/speed. With no measurable speed it returns 0, which
// means "unknown", not "done".
func (t *Tracker) ETA(remainingBytes int64) time.Duration {
	speed := t.Speed()
	return eta(remainingBytes, speed)
}

// Snapshot summarises the tracker against the total size of the transfer.
func (t *Tracker) Snapshot(total int64) Stats {
	t.mu.Lock()
	done := t.done
	speed := t.speedLocked()
	t.mu.Unlock()

	stats := Stats{
		BytesDone: done,
		Total:     total,
		Speed:     speed,
		ETA:       eta(total-done, speed),
		ETAKnown:  speed > 0,
	}
	if total > 0 {
		stats.Percent = float64(done) / float64(total) * 100
	}
	return stats
}

func eta(remaining int64, speed float64) time.Duration {
	if speed <= 0 || remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining) / speed * float64(time.Second))
}
