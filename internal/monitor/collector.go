package monitor

import (
	"sort"
	"sync"
	"time"
)

// operation holds the series for one OperationType
type operation struct {
	timer   *Timer
	success Counter
	errors  Counter
	bytes   Counter
}

// Collector aggregates operation timings. A nil *Collector records nothing,
// so callers can pass one around unconditionally.
type Collector struct {
	mu         sync.RWMutex
	operations map[OperationType]*operation
	started    time.Time
}

// New creates an empty collector
func New() *Collector {
	return &Collector{
		operations: make(map[OperationType]*operation),
		started:    time.Now(),
	}
}

func (c *Collector) get(op OperationType) *operation {
	c.mu.RLock()
	o, ok := c.operations[op]
	c.mu.RUnlock()
	if ok {
		return o
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if o, ok = c.operations[op]; !ok {
		o = &operation{timer: NewTimer()}
		c.operations[op] = o
	}
	return o
}

// Record adds one completed operation
func (c *Collector) Record(op OperationType, d time.Duration, bytes int, err error) {
	if c == nil {
		return
	}
	o := c.get(op)
	o.timer.Record(d)
	o.bytes.Add(int64(bytes))
	if err != nil {
		o.errors.Inc()
	} else {
		o.success.Inc()
	}
}

// TrackOperationWithError times fn and records its outcome
func (c *Collector) TrackOperationWithError(op OperationType, fn func() error) error {
	start := time.Now()
	err := fn()
	c.Record(op, time.Since(start), 0, err)
	return err
}

// Snapshot returns every tracked operation, ordered by name
func (c *Collector) Snapshot() []OperationMetrics {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]OperationMetrics, 0, len(c.operations))
	for op, o := range c.operations {
		out = append(out, OperationMetrics{
			Operation:    op,
			Count:        o.timer.Count(),
			SuccessCount: o.success.Get(),
			ErrorCount:   o.errors.Get(),
			TotalTime:    o.timer.TotalTime(),
			MinTime:      o.timer.MinTime(),
			MaxTime:      o.timer.MaxTime(),
			AvgTime:      o.timer.AvgTime(),
			Bytes:        o.bytes.Get(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Uptime is the time since the collector was created
func (c *Collector) Uptime() time.Duration {
	if c == nil {
		return 0
	}
	return time.Since(c.started)
}
