package dispatch

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/opd-ai/sonicloop/state"
	"github.com/sirupsen/logrus"
)

// DefaultOSCHost and DefaultOSCPort address a synthesis engine's control
// listener on the local machine.
const (
	DefaultOSCHost = "127.0.0.1"
	DefaultOSCPort = 57120

	oscWriteTimeout = 250 * time.Millisecond
)

// OSCSink sends each change as an OSC message "/<parameter>" with a single
// float32 argument, or a string argument for key and scale, over UDP.
type OSCSink struct {
	addr string

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// NewOSCSink creates a sink for host:port. The UDP socket is connected so
// unreachable-port errors surface on later sends.
func NewOSCSink(host string, port int) (*OSCSink, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial OSC target %s: %w", addr, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewOSCSink",
		"target":   addr,
	}).Info("OSC control sink ready")

	return &OSCSink{addr: addr, conn: conn}, nil
}

// NewMessage builds the OSC message for one parameter change.
func NewMessage(p state.Parameter, v state.Value) *osc.Message {
	if v.Kind == state.KindText {
		return osc.NewMessage("/"+p.String(), v.Text)
	}
	return osc.NewMessage("/"+p.String(), float32(v.Number))
}

// Send encodes and writes one datagram. No acknowledgement is awaited.
func (s *OSCSink) Send(ctx context.Context, p state.Parameter, v state.Value) error {
	data, err := NewMessage(p, v).MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode OSC message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}

	deadline := time.Now().Add(oscWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("send to %s: %w", s.addr, err)
	}
	return nil
}

// Addr returns the target address.
func (s *OSCSink) Addr() string {
	return s.addr
}

// Close releases the socket. Further sends fail with ErrSinkClosed.
func (s *OSCSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
