package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnodel/boundedstream/lines"
	"github.com/arnodel/boundedstream/stream"
)

func TestInstrument(t *testing.T) {
	m := New()
	acc := stream.NewAccumulatorStream[string]()
	ws := Instrument[string](m, "lines", acc)
	ws.Put("a")
	ws.Put("b")
	assert.Equal(t, []string{"a", "b"}, acc.Items())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.unitsEmitted.WithLabelValues("lines")))
}

func TestFeeder(t *testing.T) {
	m := New()
	acc := stream.NewAccumulatorStream[string]()
	s, err := lines.New(lines.Config{MaxLineLength: 4}, Instrument[string](m, "lines", acc))
	require.NoError(t, err)
	f := m.Feeder("lines", s)

	require.NoError(t, f.Feed([]byte("ab\ncd")))
	require.Error(t, f.Feed([]byte("efgh")))
	// Sticky errors are counted once.
	require.Error(t, f.Finish())

	assert.Equal(t, 9.0, testutil.ToFloat64(m.bytesFed.WithLabelValues("lines")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unitsEmitted.WithLabelValues("lines")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("lines", "structural")))
}

func TestRecordErrorIgnoresNil(t *testing.T) {
	m := New()
	m.RecordError("json", nil)
	assert.Equal(t, 0, testutil.CollectAndCount(m.errors))
}

func TestDump(t *testing.T) {
	m := New()
	m.RecordBytes("json", 42)
	Instrument[int](m, "chunker", stream.Discard[int]{}).Put(1)

	var buf bytes.Buffer
	require.NoError(t, m.Dump(&buf))

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(&buf)
	require.NoError(t, err)

	fed := families["boundedstream_bytes_fed_total"]
	require.NotNil(t, fed)
	require.Len(t, fed.GetMetric(), 1)
	assert.Equal(t, 42.0, fed.GetMetric()[0].GetCounter().GetValue())

	units := families["boundedstream_units_emitted_total"]
	require.NotNil(t, units)
	assert.Equal(t, 1.0, units.GetMetric()[0].GetCounter().GetValue())
}
