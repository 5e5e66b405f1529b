package router

import (
	"fmt"
	"strings"
	"sync/atomic"
)

type counters struct {
	total       atomic.Int64
	fastPath    atomic.Int64
	fallback    atomic.Int64
	failed      atomic.Int64
	unsupported atomic.Int64
	cancelled   atomic.Int64
}

func (c *counters) observe(result Result) {
	c.total.Add(1)
	switch result.Status {
	case StatusSuccess:
		c.fastPath.Add(1)
	case StatusFallback:
		c.fallback.Add(1)
	case StatusFailed:
		c.failed.Add(1)
	case StatusUnsupported:
		c.unsupported.Add(1)
	case StatusCancelled:
		c.cancelled.Add(1)
	}
}

func (c *counters) reset() {
	for _, v := range []*atomic.Int64{&c.total, &c.fastPath, &c.fallback, &c.failed, &c.unsupported, &c.cancelled} {
		v.Store(0)
	}
}

type Stats struct {
	Total            int64   `json:"total"`
	FastPath         int64   `json:"fast_path_success"`
	Fallback         int64   `json:"fallback"`
	Failed           int64   `json:"failed"`
	Unsupported      int64   `json:"unsupported"`
	Cancelled        int64   `json:"cancelled"`
	FastPathRate     float64 `json:"fast_path_rate"`
	FallbackRate     float64 `json:"fallback_rate"`
	FailureRate      float64 `json:"failure_rate"`
	UnsupportedRate  float64 `json:"unsupported_rate"`
	CurrentThreshold float64 `json:"threshold"`
}

func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "total=%d threshold=%.2f", s.Total, s.CurrentThreshold)
	if s.Total > 0 {
		fmt.Fprintf(&b, " fast_path=%.1f%% fallback=%.1f%% failed=%.1f%% unsupported=%.1f%%",
			s.FastPathRate, s.FallbackRate, s.FailureRate, s.UnsupportedRate)
	}
	return b.String()
}

func (r *Router) Stats() Stats {
	s := Stats{
		Total:            r.stats.total.Load(),
		FastPath:         r.stats.fastPath.Load(),
		Fallback:         r.stats.fallback.Load(),
		Failed:           r.stats.failed.Load(),
		Unsupported:      r.stats.unsupported.Load(),
		Cancelled:        r.stats.cancelled.Load(),
		CurrentThreshold: r.Threshold(),
	}
	if s.Total > 0 {
		total := float64(s.Total)
		s.FastPathRate = float64(s.FastPath) / total * 100
		s.FallbackRate = float64(s.Fallback) / total * 100
		s.FailureRate = float64(s.Failed) / total * 100
		s.UnsupportedRate = float64(s.Unsupported) / total * 100
	}
	return s
}

func (r *Router) ResetStats() {
	r.stats.reset()
}
