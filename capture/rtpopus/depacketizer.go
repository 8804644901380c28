package rtpopus

import (
	"errors"
	"fmt"

	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyPacket indicates a zero-length datagram.
	ErrEmptyPacket = errors.New("empty RTP packet")

	// ErrUnexpectedSSRC indicates a packet from a stream other than the one
	// first seen on the socket.
	ErrUnexpectedSSRC = errors.New("unexpected SSRC")
)

// Depacketizer extracts Opus payloads from RTP datagrams. It locks onto the
// SSRC of the first packet and counts sequence gaps. Not safe for concurrent
// use; a stream owns one.
type Depacketizer struct {
	ssrc       uint32
	hasSSRC    bool
	lastSeq    uint16
	hasLastSeq bool
	gaps       uint64
	packet     rtp.Packet
}

// NewDepacketizer creates a depacketizer that accepts the first SSRC it sees.
func NewDepacketizer() *Depacketizer {
	return &Depacketizer{}
}

// Process parses one datagram and returns its payload. The payload aliases
// data and is only valid until data is reused.
func (d *Depacketizer) Process(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyPacket
	}
	if err := d.packet.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("unmarshal RTP packet: %w", err)
	}

	if !d.hasSSRC {
		d.ssrc = d.packet.SSRC
		d.hasSSRC = true
		logrus.WithFields(logrus.Fields{
			"function": "Depacketizer.Process",
			"ssrc":     d.packet.SSRC,
		}).Info("Accepted RTP stream")
	} else if d.packet.SSRC != d.ssrc {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrUnexpectedSSRC, d.ssrc, d.packet.SSRC)
	}

	if d.hasLastSeq && d.packet.SequenceNumber != d.lastSeq+1 {
		d.gaps++
		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			logrus.WithFields(logrus.Fields{
				"function":          "Depacketizer.Process",
				"expected_sequence": d.lastSeq + 1,
				"received_sequence": d.packet.SequenceNumber,
			}).Debug("Sequence gap in RTP stream")
		}
	}
	d.lastSeq = d.packet.SequenceNumber
	d.hasLastSeq = true

	return d.packet.Payload, nil
}

// Gaps returns the number of sequence discontinuities seen.
func (d *Depacketizer) Gaps() uint64 {
	return d.gaps
}

// SSRC returns the accepted stream identifier, if one has been seen.
func (d *Depacketizer) SSRC() (uint32, bool) {
	return d.ssrc, d.hasSSRC
}
