package core

import (
	"sync"
	"time"
)

// AVG_COUNT is the number of decode samples kept for the rolling average.
const AVG_COUNT uint8 = 30

// KindStats is a snapshot of the counters kept for one asset kind.
type KindStats struct {
	Hits     uint64
	Misses   uint64
	Failures uint64
	// Average decode time in milliseconds over the last AVG_COUNT decodes.
	DecodeMSAvg float64
}

// LoadStats maps an asset kind name (mesh, material, ...) to its counters.
type LoadStats map[string]KindStats

type kindMetrics struct {
	avgCounter uint8
	samples    uint8
	msTimes    [AVG_COUNT]float64
	msAvg      float64
	hits       uint64
	misses     uint64
	failures   uint64
}

// LoadMetrics tracks cache hits, misses, failed decodes and decode timings.
// It is owned by an asset manager and lives as long as it does.
type LoadMetrics struct {
	mu    sync.Mutex
	kinds map[string]*kindMetrics
}

func NewLoadMetrics() *LoadMetrics {
	return &LoadMetrics{
		kinds: make(map[string]*kindMetrics),
	}
}

func (m *LoadMetrics) kind(name string) *kindMetrics {
	k, ok := m.kinds[name]
	if !ok {
		k = &kindMetrics{}
		m.kinds[name] = k
	}
	return k
}

func (m *LoadMetrics) RecordHit(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kind(kind).hits++
}

func (m *LoadMetrics) RecordFailure(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.kind(kind)
	k.misses++
	k.failures++
}

// RecordDecode registers a cache miss that was decoded successfully in d.
func (m *LoadMetrics) RecordDecode(kind string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.kind(kind)
	k.misses++

	ms := float64(d) / float64(time.Millisecond)
	k.msTimes[k.avgCounter] = ms
	k.avgCounter++
	k.avgCounter %= AVG_COUNT
	if k.samples < AVG_COUNT {
		k.samples++
	}

	// Average over the samples collected so far.
	total := 0.0
	for i := uint8(0); i < k.samples; i++ {
		total += k.msTimes[i]
	}
	k.msAvg = total / float64(k.samples)
}

// Reset drops every counter, used when the owning manager swaps archives.
func (m *LoadMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds = make(map[string]*kindMetrics)
}

func (m *LoadMetrics) Snapshot() LoadStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(LoadStats, len(m.kinds))
	for name, k := range m.kinds {
		out[name] = KindStats{
			Hits:        k.hits,
			Misses:      k.misses,
			Failures:    k.failures,
			DecodeMSAvg: k.msAvg,
		}
	}
	return out
}
