// Package chunker groups a stream of items into fixed-size, timestamped
// chunks.
package chunker

import (
	"time"

	"github.com/creasty/defaults"

	"github.com/arnodel/boundedstream/stream"
	"github.com/arnodel/boundedstream/streamerr"
)

const stageName = "chunker"

// Config holds the Chunker settings.  Zero fields take their default value.
type Config struct {
	// ChunkSize is the number of items in a full chunk.
	ChunkSize int `yaml:"chunk_size" default:"1000"`
	// MaxChunks is the number of emitted chunks after which Accept fails.
	MaxChunks int `yaml:"max_chunks" default:"100"`
	// MemoryBound is the maximum number of items held in the pending batch.
	MemoryBound int `yaml:"memory_bound" default:"10000"`

	// Now provides chunk timestamps, time.Now if nil.
	Now func() time.Time `yaml:"-"`
}

// WithDefaults returns a copy of c with zero fields set to their defaults.
func (c Config) WithDefaults() Config {
	defaults.MustSet(&c)
	return c
}

// Validate checks that all bounds are positive.
func (c Config) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return streamerr.InvalidConfig(stageName, "ChunkSize", c.ChunkSize)
	case c.MaxChunks <= 0:
		return streamerr.InvalidConfig(stageName, "MaxChunks", c.MaxChunks)
	case c.MemoryBound <= 0:
		return streamerr.InvalidConfig(stageName, "MemoryBound", c.MemoryBound)
	}
	return nil
}

// A Result is an emitted chunk.  ChunkID counts chunks from 1 in emission
// order.
type Result[T any] struct {
	Data      []T       `json:"data"`
	ChunkID   int       `json:"chunkId"`
	Timestamp time.Time `json:"timestamp"`
}

// A Chunker accumulates items and emits a Result each time ChunkSize items
// have been accepted.  It is not safe for concurrent use.
type Chunker[T any] struct {
	cfg     Config
	out     stream.WriteStream[Result[T]]
	pending []T
	chunks  int
	err     error
}

// New returns a Chunker emitting into out.
func New[T any](cfg Config, out stream.WriteStream[Result[T]]) (*Chunker[T], error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Chunker[T]{cfg: cfg, out: out}, nil
}

// Accept appends item to the pending batch, emitting it when it is full.
// Once MaxChunks chunks have been emitted, or when the pending batch grows
// beyond MemoryBound, Accept fails and the Chunker is no longer usable.
func (c *Chunker[T]) Accept(item T) error {
	if c.err != nil {
		return c.err
	}
	c.pending = append(c.pending, item)
	if len(c.pending) >= c.cfg.ChunkSize {
		c.emit()
	}
	switch {
	case c.chunks >= c.cfg.MaxChunks:
		c.err = streamerr.New(stageName, "Accept", streamerr.ErrMaxChunks, "limit is %d", c.cfg.MaxChunks)
	case len(c.pending) > c.cfg.MemoryBound:
		c.err = streamerr.New(stageName, "Accept", streamerr.ErrMemoryBound, "%d items pending, bound is %d", len(c.pending), c.cfg.MemoryBound)
	}
	return c.err
}

// Finish emits the pending batch if it is not empty.  The final chunk is
// counted but not checked against MaxChunks.
func (c *Chunker[T]) Finish() error {
	if c.err != nil {
		return c.err
	}
	if len(c.pending) > 0 {
		c.emit()
	}
	return nil
}

// Chunks returns the number of chunks emitted so far.
func (c *Chunker[T]) Chunks() int {
	return c.chunks
}

// Pending returns the number of items waiting in the current batch.
func (c *Chunker[T]) Pending() int {
	return len(c.pending)
}

func (c *Chunker[T]) emit() {
	c.chunks++
	data := c.pending
	// The next batch is sized on what actually arrived, never on the bounds.
	c.pending = make([]T, 0, len(data))
	c.out.Put(Result[T]{
		Data:      data,
		ChunkID:   c.chunks,
		Timestamp: c.cfg.Now(),
	})
}
