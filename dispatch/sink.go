package dispatch

import (
	"context"
	"errors"
	"io"

	"github.com/opd-ai/sonicloop/state"
)

// Sink emits one control message per applied parameter change. Delivery is
// fire-and-forget; a returned error means the message was not handed to the
// transport.
type Sink interface {
	Send(ctx context.Context, p state.Parameter, v state.Value) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, p state.Parameter, v state.Value) error

// Send calls f.
func (f SinkFunc) Send(ctx context.Context, p state.Parameter, v state.Value) error {
	return f(ctx, p, v)
}

// NopSink discards every message.
type NopSink struct{}

// Send does nothing.
func (NopSink) Send(context.Context, state.Parameter, state.Value) error { return nil }

// MultiSink fans a message out to several sinks. Every sink is attempted and
// failures are joined.
type MultiSink []Sink

// Send delivers to each sink in order.
func (m MultiSink) Send(ctx context.Context, p state.Parameter, v state.Value) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, p, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that implements io.Closer.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
