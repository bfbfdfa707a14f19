package agentframework

import (
	"context"
	"iter"
	"sync"
)

// ResponseStream provides a pull-based iterator over streaming responses.
// It wraps a channel internally but exposes a cleaner API with error
// propagation and cleanup guarantees.
//
// Callers must call Close when done, or use a context with cancellation.
type ResponseStream[T any] struct {
	ch        <-chan T
	errCh     <-chan error
	cancel    context.CancelFunc
	closeOnce sync.Once
	err       error
}

// NewResponseStream creates a ResponseStream by running producer in a goroutine.
// The producer should send values to the channel and return any error.
// The channel is closed automatically when the producer returns.
func NewResponseStream[T any](ctx context.Context, producer func(ctx context.Context, ch chan<- T) error) *ResponseStream[T] {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan T, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(ch)
		if err := producer(ctx, ch); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	return &ResponseStream[T]{
		ch:     ch,
		errCh:  errCh,
		cancel: cancel,
	}
}

// Next returns the next value from the stream.
// ok is false when the stream is exhausted. err is non-nil on failure.
func (s *ResponseStream[T]) Next(ctx context.Context) (val T, ok bool, err error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	case v, open := <-s.ch:
		if !open {
			select {
			case e := <-s.errCh:
				if e != nil {
					s.err = e
				}
			default:
			}
			var zero T
			return zero, false, s.err
		}
		return v, true, nil
	}
}

// All ranges over the remaining values. A failure is yielded once, with a
// zero value, and ends the sequence.
func (s *ResponseStream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return drain(ctx, s.Next)
}

// Collect drains the entire stream and returns all values.
func (s *ResponseStream[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for v, err := range s.All(ctx) {
		if err != nil {
			return items, err
		}
		items = append(items, v)
	}
	return items, nil
}

func drain[T any](ctx context.Context, next func(context.Context) (T, bool, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, ok, err := next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok || !yield(v, nil) {
				return
			}
		}
	}
}

// Close cancels the producer and releases resources.
// Safe to call multiple times.
func (s *ResponseStream[T]) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		for range s.ch {
		}
		select {
		case e := <-s.errCh:
			if s.err == nil {
				s.err = e
			}
		default:
		}
	})
	return nil
}

// AgentResponseStream wraps a [ResponseStream] of [AgentResponseUpdate] and
// provides a FinalResponse method that collects all updates and merges them.
type AgentResponseStream struct {
	stream  *ResponseStream[AgentResponseUpdate]
	updates []AgentResponseUpdate

	// final is written by the producer before the stream closes.
	final *AgentResponse
}

// NewAgentResponseStream wraps a raw update stream.
func NewAgentResponseStream(stream *ResponseStream[AgentResponseUpdate]) *AgentResponseStream {
	return &AgentResponseStream{stream: stream}
}

// StreamAgentResponse runs producer in a goroutine. Every update passed to
// emit is delivered to the reader, and the response returned by producer
// becomes the stream's FinalResponse.
func StreamAgentResponse(ctx context.Context, producer func(ctx context.Context, emit func(AgentResponseUpdate) error) (*AgentResponse, error)) *AgentResponseStream {
	s := &AgentResponseStream{}
	s.stream = NewResponseStream(ctx, func(ctx context.Context, ch chan<- AgentResponseUpdate) error {
		emit := func(u AgentResponseUpdate) error {
			select {
			case ch <- u:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		resp, err := producer(ctx, emit)
		if err != nil {
			return err
		}
		s.final = resp
		return nil
	})
	return s
}

// Next returns the next streaming update.
func (s *AgentResponseStream) Next(ctx context.Context) (AgentResponseUpdate, bool, error) {
	val, ok, err := s.stream.Next(ctx)
	if ok {
		s.updates = append(s.updates, val)
	}
	return val, ok, err
}

// Updates ranges over the streaming updates, recording each one for
// FinalResponse.
func (s *AgentResponseStream) Updates(ctx context.Context) iter.Seq2[AgentResponseUpdate, error] {
	return drain(ctx, s.Next)
}

// FinalResponse collects remaining updates and returns the merged [AgentResponse].
// After calling this, the stream is fully consumed.
func (s *AgentResponseStream) FinalResponse(ctx context.Context) (*AgentResponse, error) {
	for _, err := range s.Updates(ctx) {
		if err != nil {
			return nil, err
		}
	}
	if s.final != nil {
		return s.final, nil
	}
	return AgentResponseFromUpdates(s.updates), nil
}

// Close releases the underlying stream resources.
func (s *AgentResponseStream) Close() error {
	return s.stream.Close()
}
