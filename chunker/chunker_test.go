package chunker

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnodel/boundedstream/stream"
	"github.com/arnodel/boundedstream/streamerr"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return epoch.Add(time.Duration(n) * time.Second)
	}
}

func newTestChunker(t *testing.T, cfg Config) (*Chunker[int], *stream.AccumulatorStream[Result[int]]) {
	t.Helper()
	out := stream.NewAccumulatorStream[Result[int]]()
	cfg.Now = fixedClock()
	c, err := New[int](cfg, out)
	require.NoError(t, err)
	return c, out
}

func TestChunkSizeThree(t *testing.T) {
	c, out := newTestChunker(t, Config{ChunkSize: 3})
	for i := 1; i <= 5; i++ {
		require.NoError(t, c.Accept(i))
	}
	require.Len(t, out.Items(), 1)
	require.NoError(t, c.Finish())

	results := out.Items()
	require.Len(t, results, 2)
	assert.Equal(t, []int{1, 2, 3}, results[0].Data)
	assert.Equal(t, 1, results[0].ChunkID)
	assert.Equal(t, []int{4, 5}, results[1].Data)
	assert.Equal(t, 2, results[1].ChunkID)
	assert.True(t, results[0].Timestamp.Before(results[1].Timestamp))
	assert.Equal(t, 2, c.Chunks())
}

func TestFinishEmpty(t *testing.T) {
	c, out := newTestChunker(t, Config{ChunkSize: 2})
	require.NoError(t, c.Accept(1))
	require.NoError(t, c.Accept(2))
	require.NoError(t, c.Finish())
	assert.Len(t, out.Items(), 1)

	c, out = newTestChunker(t, Config{})
	require.NoError(t, c.Finish())
	assert.Empty(t, out.Items())
}

func TestMemoryBound(t *testing.T) {
	c, out := newTestChunker(t, Config{ChunkSize: 1000, MemoryBound: 2})
	require.NoError(t, c.Accept(1))
	require.NoError(t, c.Accept(2))
	err := c.Accept(3)
	require.ErrorIs(t, err, streamerr.ErrMemoryBound)
	assert.True(t, streamerr.IsResourceExhausted(err))
	assert.Empty(t, out.Items())

	// The stage stays failed.
	assert.ErrorIs(t, c.Accept(4), streamerr.ErrMemoryBound)
	assert.ErrorIs(t, c.Finish(), streamerr.ErrMemoryBound)
	assert.Empty(t, out.Items())
}

func TestMaxChunks(t *testing.T) {
	c, out := newTestChunker(t, Config{ChunkSize: 2, MaxChunks: 2})
	require.NoError(t, c.Accept(1))
	require.NoError(t, c.Accept(2))
	require.NoError(t, c.Accept(3))
	err := c.Accept(4)
	require.ErrorIs(t, err, streamerr.ErrMaxChunks)
	assert.True(t, streamerr.IsResourceExhausted(err))
	// The chunk that reached the limit was still emitted.
	require.Len(t, out.Items(), 2)
	assert.Equal(t, []int{3, 4}, out.Items()[1].Data)
}

func TestFinishNotCheckedAgainstMaxChunks(t *testing.T) {
	c, out := newTestChunker(t, Config{ChunkSize: 2, MaxChunks: 2})
	require.NoError(t, c.Accept(1))
	require.NoError(t, c.Accept(2))
	require.NoError(t, c.Accept(3))
	require.NoError(t, c.Finish())
	assert.Len(t, out.Items(), 2)
	assert.Equal(t, 2, c.Chunks())
}

func TestEmittedChunksAreIndependent(t *testing.T) {
	c, out := newTestChunker(t, Config{ChunkSize: 2})
	for i := 0; i < 4; i++ {
		require.NoError(t, c.Accept(i))
	}
	results := out.Items()
	require.Len(t, results, 2)
	results[0].Data[0] = 100
	assert.Equal(t, []int{2, 3}, results[1].Data)
	assert.Equal(t, 0, c.Pending())
}

func TestUnboundedConfig(t *testing.T) {
	c, out := newTestChunker(t, Config{ChunkSize: 3, MaxChunks: math.MaxInt, MemoryBound: math.MaxInt})
	assert.Equal(t, 0, c.Pending())
	require.NoError(t, c.Accept(1))
	require.NoError(t, c.Accept(2))
	assert.Equal(t, 2, c.Pending())
	require.NoError(t, c.Accept(3))
	assert.Equal(t, 0, c.Pending())
	require.NoError(t, c.Accept(4))
	require.NoError(t, c.Finish())

	results := out.Items()
	require.Len(t, results, 2)
	assert.Equal(t, []int{1, 2, 3}, results[0].Data)
	assert.Equal(t, []int{4}, results[1].Data)
}

func TestConfig(t *testing.T) {
	cfg := Config{}.WithDefaults()
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.MaxChunks)
	assert.Equal(t, 10000, cfg.MemoryBound)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative chunk size", Config{ChunkSize: -1}},
		{"negative max chunks", Config{MaxChunks: -5}},
		{"negative memory bound", Config{MemoryBound: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[string](tt.cfg, stream.Discard[Result[string]]{})
			require.ErrorIs(t, err, streamerr.ErrInvalidConfig)
		})
	}
}

func TestChannelBackpressure(t *testing.T) {
	results := stream.Start(func(w stream.WriteStream[Result[string]]) error {
		c, err := New[string](Config{ChunkSize: 2}, w)
		if err != nil {
			return err
		}
		for _, s := range []string{"a", "b", "c"} {
			if err := c.Accept(s); err != nil {
				return err
			}
		}
		return c.Finish()
	}, nil)
	got := stream.Collect(results)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, got[0].Data)
	assert.Equal(t, []string{"c"}, got[1].Data)
}
