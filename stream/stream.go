// Package stream contains the plumbing that connects producers, stages and
// consumers.
//
// Stages emit their output units into a WriteStream.  A WriteStream can
// collect units in memory (AccumulatorStream), hand them to a callback
// (FuncWriteStream) or send them to a channel (ChannelWriteStream).  With an
// unbuffered channel, a slow consumer suspends the stage, which in turn
// suspends whatever is feeding it.
package stream

import "context"

type WriteStream[T any] interface {
	Put(T)
}

type ReadStream[T any] interface {
	Next() (T, bool)
}

type ChannelReadStream[T any] <-chan T

var _ ReadStream[int] = make(ChannelReadStream[int])

func (r ChannelReadStream[T]) Next() (T, bool) {
	v, ok := <-r
	return v, ok
}

type ChannelWriteStream[T any] chan<- T

var _ WriteStream[int] = make(ChannelWriteStream[int])

func (w ChannelWriteStream[T]) Put(v T) {
	w <- v
}

// ContextWriteStream sends values to a channel until its context is done,
// after which values are dropped.  Use it when the consumer may stop
// reading, so that a blocked producer is released and notices the
// cancellation on its next context check.
type ContextWriteStream[T any] struct {
	ctx context.Context
	out chan<- T
}

var _ WriteStream[int] = ContextWriteStream[int]{}

func NewContextWriteStream[T any](ctx context.Context, out chan<- T) ContextWriteStream[T] {
	return ContextWriteStream[T]{ctx: ctx, out: out}
}

func (w ContextWriteStream[T]) Put(v T) {
	select {
	case w.out <- v:
	case <-w.ctx.Done():
	}
}

// FuncWriteStream adapts a function to the WriteStream interface.
type FuncWriteStream[T any] func(T)

func (f FuncWriteStream[T]) Put(v T) {
	f(v)
}

type AccumulatorStream[T any] struct {
	items []T
}

var _ WriteStream[int] = &AccumulatorStream[int]{}

func NewAccumulatorStream[T any]() *AccumulatorStream[T] {
	return &AccumulatorStream[T]{}
}

func (w *AccumulatorStream[T]) Put(v T) {
	w.items = append(w.items, v)
}

// Items returns the units accumulated so far.
func (w *AccumulatorStream[T]) Items() []T {
	return w.items
}

// Reset drops accumulated units and returns them.
func (w *AccumulatorStream[T]) Reset() []T {
	items := w.items
	w.items = nil
	return items
}

// Discard is a WriteStream that drops everything.
type Discard[T any] struct{}

func (Discard[T]) Put(T) {}
