// Package streams provides a small, generic, pull-based iterator.
//
// It exists so that line-oriented readers can hand large files to the
// pipeline lazily: items are pulled one at a time from the consumer's
// goroutine, with no intermediate goroutine or channel per transformation
// step.
package streams

// Stream is a lazy iterator over a sequence of items of type T.
//
// A Stream wraps a single closure that produces the next item on demand.
// The zero value is not useful; build streams with New or FromFunc.
type Stream[T any] struct {
	next func() (T, bool)
}

// New adapts a read-only channel into a Stream. The stream produces items
// until the channel is closed and drained.
func New[T any](source <-chan T) Stream[T] {
	return Stream[T]{
		next: func() (T, bool) {
			val, ok := <-source
			return val, ok
		},
	}
}

// FromFunc wraps a producer function directly. The function must return
// ok=false once the sequence is exhausted, and keep returning it after.
func FromFunc[T any](next func() (T, bool)) Stream[T] {
	return Stream[T]{next: next}
}

// Map returns a Stream that lazily applies conv to each item of source.
func Map[T, U any](source Stream[T], conv func(T) U) Stream[U] {
	return Stream[U]{
		next: func() (U, bool) {
			val, ok := source.Next()
			if !ok {
				var zero U
				return zero, false
			}
			return conv(val), true
		},
	}
}

// Next produces the next item. The ok flag is false once the stream is
// exhausted; consumers must check it to terminate iteration.
func (s *Stream[T]) Next() (T, bool) {
	return s.next()
}

// All allows range-over-func iteration for Go 1.22+.
func (s *Stream[T]) All(yield func(T) bool) {
	for {
		item, ok := s.next()
		if !ok {
			return
		}
		if !yield(item) {
			return
		}
	}
}

// Collect drains the stream into a slice.
func Collect[T any](s Stream[T]) []T {
	var out []T
	for {
		item, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, item)
	}
}
