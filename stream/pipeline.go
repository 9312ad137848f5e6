package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// A Feeder consumes raw fragments and emits output units somewhere.  Feed
// must not retain the fragment after it returns.  Finish signals end of
// stream.
type Feeder interface {
	Feed(fragment []byte) error
	Finish() error
}

// DefaultFragmentSize is the read size used by Pump when bufSize <= 0.
const DefaultFragmentSize = 32 * 1024

// Pump reads fragments from r and feeds them to f until EOF, then calls
// Finish.  It stops at the first error returned by r or f.  The context is
// checked between reads.
func Pump(ctx context.Context, r io.Reader, bufSize int, f Feeder) error {
	if bufSize <= 0 {
		bufSize = DefaultFragmentSize
	}
	buf := make([]byte, bufSize)
	for i := maxConsecutiveEmptyReads; ; {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			i = maxConsecutiveEmptyReads
			if ferr := f.Feed(buf[:n]); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return f.Finish()
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if n == 0 {
			i--
			if i == 0 {
				return io.ErrNoProgress
			}
		}
	}
}

const maxConsecutiveEmptyReads = 100

// Start runs produce in a goroutine, giving it a WriteStream backed by a new
// unbuffered channel, and returns that channel.  The channel is closed when
// produce returns.  As produce can fail, a handleError function can be
// provided; it is called from the producing goroutine before the channel is
// closed.
func Start[T any](produce func(WriteStream[T]) error, handleError func(error)) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		err := produce(ChannelWriteStream[T](out))
		if err != nil && handleError != nil {
			handleError(err)
		}
	}()
	return out
}

// Collect drains a channel into a slice.
func Collect[T any](in <-chan T) []T {
	var items []T
	for v := range in {
		items = append(items, v)
	}
	return items
}
