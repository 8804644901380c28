package rtpopus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/opd-ai/sonicloop/capture"
	"github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

const (
	// maxDatagram bounds a single RTP datagram.
	maxDatagram = 1500
	// maxDecodedBytes fits 120 ms of 48 kHz stereo int16.
	maxDecodedBytes = 5760 * 2 * 2
)

// Decoder decodes one Opus packet into little-endian int16 PCM.
type Decoder interface {
	Decode(in, out []byte) (opus.Bandwidth, bool, error)
}

// Driver receives RTP/Opus audio on a UDP address and presents it as a single
// capture device named "rtp-opus@<addr>".
type Driver struct {
	addr       string
	newDecoder func() Decoder
}

// New creates a driver listening on addr (host:port).
func New(addr string) *Driver {
	return &Driver{
		addr: addr,
		newDecoder: func() Decoder {
			dec := opus.NewDecoder()
			return &dec
		},
	}
}

// Name returns "rtp-opus".
func (d *Driver) Name() string { return "rtp-opus" }

// Devices reports the one network device.
func (d *Driver) Devices() ([]capture.DeviceInfo, error) {
	return []capture.DeviceInfo{{
		Index:            0,
		Name:             "rtp-opus@" + d.addr,
		MaxInputChannels: 2,
		IsDefault:        true,
	}}, nil
}

// Open binds the UDP socket and starts the receive goroutine.
func (d *Driver) Open(ctx context.Context, device capture.DeviceInfo, cfg capture.StreamConfig, onData capture.DataCallback) (capture.Stream, error) {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp", d.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: listen %s: %v", capture.ErrDeviceUnavailable, d.addr, err)
	}

	s := newStream(conn, cfg, d.newDecoder(), onData)
	go s.run()

	logrus.WithFields(logrus.Fields{
		"function":    "Driver.Open",
		"device":      device.Name,
		"local_addr":  conn.LocalAddr().String(),
		"sample_rate": cfg.SampleRate,
		"channels":    cfg.Channels,
	}).Info("Listening for RTP/Opus audio")

	return s, nil
}

// Stream is an open RTP/Opus receiver.
type Stream struct {
	conn    net.PacketConn
	cfg     capture.StreamConfig
	depack  *Depacketizer
	decoder Decoder
	reblock *Reblocker
	out     []byte
	pcm     []int16

	packets      atomic.Uint64
	decodeErrors atomic.Uint64

	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

func newStream(conn net.PacketConn, cfg capture.StreamConfig, dec Decoder, onData capture.DataCallback) *Stream {
	return &Stream{
		conn:    conn,
		cfg:     cfg,
		depack:  NewDepacketizer(),
		decoder: dec,
		reblock: NewReblocker(cfg.BlockSize, cfg.Channels, cfg.SampleRate, onData),
		out:     make([]byte, maxDecodedBytes),
		pcm:     make([]int16, maxDecodedBytes/2),
		done:    make(chan struct{}),
	}
}

// Config reports the delivered format. Decoded audio is converted to the
// requested rate and channel count.
func (s *Stream) Config() capture.StreamConfig { return s.cfg }

// LocalAddr returns the bound UDP address.
func (s *Stream) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// Packets returns the number of packets decoded successfully.
func (s *Stream) Packets() uint64 { return s.packets.Load() }

// DecodeErrors returns the number of packets dropped as undecodable.
func (s *Stream) DecodeErrors() uint64 { return s.decodeErrors.Load() }

// Close stops the receiver. No callback runs after Close returns.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.conn.Close()
		<-s.done
	})
	return err
}

func (s *Stream) run() {
	defer close(s.done)
	buf := make([]byte, maxDatagram)
	for {
		n, _, err := s.conn.ReadFrom(buf)
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			logrus.WithFields(logrus.Fields{
				"function": "Stream.run",
				"error":    err.Error(),
			}).Warn("RTP read failed")
			continue
		}
		if err := s.handlePacket(buf[:n]); err != nil {
			s.decodeErrors.Add(1)
			if logrus.IsLevelEnabled(logrus.DebugLevel) {
				logrus.WithFields(logrus.Fields{
					"function": "Stream.run",
					"error":    err.Error(),
				}).Debug("Dropped RTP packet")
			}
		}
	}
}

// handlePacket depacketizes, decodes and reblocks one datagram.
func (s *Stream) handlePacket(data []byte) error {
	payload, err := s.depack.Process(data)
	if err != nil {
		return err
	}

	bandwidth, stereo, err := s.decoder.Decode(payload, s.out)
	if err != nil {
		return fmt.Errorf("opus decode: %w", err)
	}

	rate := bandwidth.SampleRate()
	channels := 1
	if stereo {
		channels = 2
	}
	frames, err := packetSamples(payload, rate)
	if err != nil {
		return err
	}
	count := frames * channels
	if count*2 > len(s.out) {
		count = len(s.out) / 2
	}

	pcm := s.pcm[:count]
	for i := range pcm {
		pcm[i] = int16(s.out[i*2]) | int16(s.out[i*2+1])<<8
	}
	s.reblock.Write(pcm, channels, uint32(rate))
	s.packets.Add(1)
	return nil
}
