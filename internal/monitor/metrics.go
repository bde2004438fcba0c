// Package monitor records how long submissions, imports and decodes take and
// how often they fail.
package monitor

import (
	"math"
	"sync/atomic"
	"time"
)

// OperationType names a tracked operation
type OperationType string

const (
	OperationSubmit OperationType = "submit"
	OperationImport OperationType = "import"
	OperationDecode OperationType = "decode"
)

// OperationMetrics is a point-in-time view of one operation
type OperationMetrics struct {
	Operation    OperationType `json:"operation"`
	Count        int64         `json:"count"`
	SuccessCount int64         `json:"success_count"`
	ErrorCount   int64         `json:"error_count"`
	TotalTime    time.Duration `json:"total_time_ns"`
	MinTime      time.Duration `json:"min_time_ns"`
	MaxTime      time.Duration `json:"max_time_ns"`
	AvgTime      time.Duration `json:"avg_time_ns"`
	Bytes        int64         `json:"bytes"`
}

// Counter is a thread-safe counter
type Counter struct {
	value int64
}

// Add adds n to the counter
func (c *Counter) Add(n int64) {
	atomic.AddInt64(&c.value, n)
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.Add(1)
}

// Get returns the current value
func (c *Counter) Get() int64 {
	return atomic.LoadInt64(&c.value)
}

const noMin = math.MaxInt64

// Timer is a thread-safe duration histogram reduced to count, total, min and max
type Timer struct {
	count     int64
	totalTime int64
	minTime   int64
	maxTime   int64
}

// NewTimer creates an empty timer
func NewTimer() *Timer {
	return &Timer{minTime: noMin}
}

// Record adds one measurement
func (t *Timer) Record(d time.Duration) {
	nanos := d.Nanoseconds()
	atomic.AddInt64(&t.count, 1)
	atomic.AddInt64(&t.totalTime, nanos)

	for {
		current := atomic.LoadInt64(&t.minTime)
		if nanos >= current || atomic.CompareAndSwapInt64(&t.minTime, current, nanos) {
			break
		}
	}
	for {
		current := atomic.LoadInt64(&t.maxTime)
		if nanos <= current || atomic.CompareAndSwapInt64(&t.maxTime, current, nanos) {
			break
		}
	}
}

// Count returns the number of measurements
func (t *Timer) Count() int64 {
	return atomic.LoadInt64(&t.count)
}

// TotalTime returns the sum of all measurements
func (t *Timer) TotalTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&t.totalTime))
}

// MinTime returns the shortest measurement, or 0 when there is none
func (t *Timer) MinTime() time.Duration {
	if v := atomic.LoadInt64(&t.minTime); v != noMin {
		return time.Duration(v)
	}
	return 0
}

// MaxTime returns the longest measurement
func (t *Timer) MaxTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&t.maxTime))
}

// AvgTime returns the mean measurement
func (t *Timer) AvgTime() time.Duration {
	count := t.Count()
	if count == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&t.totalTime) / count)
}
