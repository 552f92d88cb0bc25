package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "voxbuf"

// Metrics collects meshing, raycast and store counters. A nil *Metrics
// discards every observation.
type Metrics struct {
	meshQuads     prometheus.Counter
	meshChunks    prometheus.Counter
	meshDuration  prometheus.Histogram
	raycasts      *prometheus.CounterVec
	chunksWritten prometheus.Counter
	chunksDeleted prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		meshQuads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mesh_quads_total",
			Help:      "Quads emitted by the greedy mesher.",
		}),
		meshChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mesh_chunks_total",
			Help:      "Chunks meshed.",
		}),
		meshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mesh_duration_seconds",
			Help:      "Wall time of a full meshing pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		raycasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raycast_total",
			Help:      "Raycasts by result (hit or miss).",
		}, []string{"result"}),
		chunksWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_chunks_written_total",
			Help:      "Chunk records written to the store.",
		}),
		chunksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_chunks_deleted_total",
			Help:      "Chunk records deleted from the store.",
		}),
	}
	reg.MustRegister(m.meshQuads, m.meshChunks, m.meshDuration, m.raycasts, m.chunksWritten, m.chunksDeleted)
	return m
}

// ObserveMesh implements mesh.Observer.
func (m *Metrics) ObserveMesh(chunks, quads int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.meshChunks.Add(float64(chunks))
	m.meshQuads.Add(float64(quads))
	m.meshDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRaycast(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.raycasts.WithLabelValues(result).Inc()
}

// ObserveStore implements store.Observer.
func (m *Metrics) ObserveStore(written, deleted int) {
	if m == nil {
		return
	}
	m.chunksWritten.Add(float64(written))
	m.chunksDeleted.Add(float64(deleted))
}

// WriteText writes every gathered family in the Prometheus text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
