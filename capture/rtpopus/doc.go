// Package rtpopus is a capture.Driver that receives audio over the network:
// RTP datagrams (github.com/pion/rtp) carrying Opus payloads, decoded with
// github.com/pion/opus.
//
// The driver exposes a single device, "rtp-opus@<addr>". Opening it binds a
// UDP socket and starts a receive goroutine which, per datagram:
//
//  1. parses the RTP header, locking onto the first SSRC seen and counting
//     sequence gaps,
//  2. decodes the Opus payload to int16 PCM at the bandwidth's native rate,
//  3. converts to float32 at the requested rate and channel count and
//     re-blocks to BlockSize frames before invoking the capture callback.
//
// Undecodable packets are counted and dropped.
package rtpopus
