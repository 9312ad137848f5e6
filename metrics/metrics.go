// Package metrics counts what flows through the stream stages.
//
// Stages know nothing about metrics: the counters are attached by wrapping
// their output write stream with Instrument and their input with Feeder.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/arnodel/boundedstream/stream"
	"github.com/arnodel/boundedstream/streamerr"
)

const namespace = "boundedstream"

// Metrics holds the stage counters and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	unitsEmitted *prometheus.CounterVec
	bytesFed     *prometheus.CounterVec
	errors       *prometheus.CounterVec
}

// New creates the counters and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		unitsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_emitted_total",
			Help:      "Number of units (chunks, lines, values) emitted by a stage.",
		}, []string{"stage"}),
		bytesFed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_fed_total",
			Help:      "Number of input bytes fed to a stage.",
		}, []string{"stage"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of terminal stage errors by kind.",
		}, []string{"stage", "kind"}),
	}
	m.registry.MustRegister(m.unitsEmitted, m.bytesFed, m.errors)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordError counts err against stage.  Nil errors are ignored.
func (m *Metrics) RecordError(stage string, err error) {
	if err == nil {
		return
	}
	m.errors.WithLabelValues(stage, streamerr.KindOf(err).String()).Inc()
}

// RecordBytes adds n to the bytes fed to stage.
func (m *Metrics) RecordBytes(stage string, n int) {
	m.bytesFed.WithLabelValues(stage).Add(float64(n))
}

// RecordUnits adds n to the units emitted by stage, for stages that are not
// connected through a write stream.
func (m *Metrics) RecordUnits(stage string, n int) {
	m.unitsEmitted.WithLabelValues(stage).Add(float64(n))
}

// Dump writes all gathered metrics in the Prometheus text format.
func (m *Metrics) Dump(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// Instrument returns a write stream counting every value put to ws as a unit
// emitted by stage.
func Instrument[T any](m *Metrics, stage string, ws stream.WriteStream[T]) stream.WriteStream[T] {
	return &countingWriteStream[T]{
		counter: m.unitsEmitted.WithLabelValues(stage),
		next:    ws,
	}
}

type countingWriteStream[T any] struct {
	counter prometheus.Counter
	next    stream.WriteStream[T]
}

func (s *countingWriteStream[T]) Put(v T) {
	s.counter.Inc()
	s.next.Put(v)
}

// Feeder wraps f so that fed bytes and returned errors are counted against
// stage.  An error is only counted once even though stage errors are sticky.
func (m *Metrics) Feeder(stage string, f stream.Feeder) stream.Feeder {
	return &countingFeeder{metrics: m, stage: stage, next: f}
}

type countingFeeder struct {
	metrics *Metrics
	stage   string
	next    stream.Feeder
	failed  bool
}

func (f *countingFeeder) Feed(fragment []byte) error {
	f.metrics.RecordBytes(f.stage, len(fragment))
	return f.check(f.next.Feed(fragment))
}

func (f *countingFeeder) Finish() error {
	return f.check(f.next.Finish())
}

func (f *countingFeeder) check(err error) error {
	if err != nil && !f.failed {
		f.failed = true
		f.metrics.RecordError(f.stage, err)
	}
	return err
}
