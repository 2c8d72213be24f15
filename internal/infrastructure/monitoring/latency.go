package monitoring

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultLatencyWindow is the number of recent samples kept
const DefaultLatencyWindow = 1024

// Latency keeps a sliding window of durations for quick summaries
type Latency struct {
	mu      sync.Mutex
	samples []float64 // Seconds, ring storage
	next    int
	full    bool
	count   uint64
}

// LatencySummary describes the current window, in seconds
type LatencySummary struct {
	Count uint64  `json:"count"`
	Mean  float64 `json:"mean_seconds"`
	P50   float64 `json:"p50_seconds"`
	P95   float64 `json:"p95_seconds"`
	Max   float64 `json:"max_seconds"`
}

// NewLatency creates a window holding up to size samples
func NewLatency(size int) *Latency {
	if size < 1 {
		size = 1
	}
	return &Latency{samples: make([]float64, size)}
}

// Observe adds a sample
func (l *Latency) Observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.samples[l.next] = d.Seconds()
	l.next = (l.next + 1) % len(l.samples)
	if l.next == 0 {
		l.full = true
	}
	l.count++
}

// Summary computes mean and quantiles of the window
func (l *Latency) Summary() LatencySummary {
	l.mu.Lock()
	n := l.next
	if l.full {
		n = len(l.samples)
	}
	window := make([]float64, n)
	copy(window, l.samples[:n])
	count := l.count
	l.mu.Unlock()

	summary := LatencySummary{Count: count}
	if n == 0 {
		return summary
	}

	sort.Float64s(window)
	summary.Mean = stat.Mean(window, nil)
	summary.P50 = stat.Quantile(0.5, stat.Empirical, window, nil)
	summary.P95 = stat.Quantile(0.95, stat.Empirical, window, nil)
	summary.Max = window[n-1]
	return summary
}
