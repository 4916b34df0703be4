package backing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type instrumentedMetrics struct {
	operations *prometheus.CounterVec
	liveBytes  prometheus.Gauge
}

func newInstrumentedMetrics(reg prometheus.Registerer) *instrumentedMetrics {
	return &instrumentedMetrics{
		operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Subsystem: "backing",
			Name:      "operations_total",
			Help:      "Backing allocator calls by operation and result.",
		}, []string{"op", "result"}),
		liveBytes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "arena",
			Subsystem: "backing",
			Name:      "live_bytes",
			Help:      "Bytes allocated through the backing allocator and not yet freed.",
		}),
	}
}

// Instrumented wraps an Allocator and records every call in prometheus
// metrics. A nil registerer keeps the metrics unregistered.
type Instrumented struct {
	next    Allocator
	metrics *instrumentedMetrics
}

// NewInstrumented returns next wrapped with metrics registered on reg.
func NewInstrumented(next Allocator, reg prometheus.Registerer) *Instrumented {
	return &Instrumented{
		next:    next,
		metrics: newInstrumentedMetrics(reg),
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// Alloc satisfies the Allocator interface.
func (i *Instrumented) Alloc(size, alignment int) ([]byte, error) {
	b, err := i.next.Alloc(size, alignment)
	i.metrics.operations.WithLabelValues("alloc", result(err == nil)).Inc()
	if err == nil {
		i.metrics.liveBytes.Add(float64(len(b)))
	}
	return b, err
}

// Resize satisfies the Allocator interface.
func (i *Instrumented) Resize(block []byte, newSize int) ([]byte, bool) {
	b, ok := i.next.Resize(block, newSize)
	i.metrics.operations.WithLabelValues("resize", result(ok)).Inc()
	if ok {
		i.metrics.liveBytes.Add(float64(newSize - len(block)))
	}
	return b, ok
}

// Free satisfies the Allocator interface.
func (i *Instrumented) Free(block []byte) {
	i.next.Free(block)
	i.metrics.operations.WithLabelValues("free", "success").Inc()
	i.metrics.liveBytes.Sub(float64(len(block)))
}
