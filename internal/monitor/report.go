package monitor

import (
	"fmt"
	"strings"
	"time"
)

// FormatText renders a snapshot as an aligned table
func FormatText(ops []OperationMetrics, uptime time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Performance (%s)\n", round(uptime))
	if len(ops) == 0 {
		b.WriteString("  no operations recorded\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  %-8s %6s %6s %6s %10s %10s %10s %10s\n", "op", "count", "ok", "failed", "min", "avg", "max", "bytes")
	for _, op := range ops {
		fmt.Fprintf(&b, "  %-8s %6d %6d %6d %10s %10s %10s %10d\n",
			op.Operation, op.Count, op.SuccessCount, op.ErrorCount,
			round(op.MinTime), round(op.AvgTime), round(op.MaxTime), op.Bytes)
	}
	return b.String()
}

func round(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond)
	default:
		return d.Round(time.Microsecond)
	}
}
