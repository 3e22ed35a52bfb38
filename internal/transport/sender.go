package transport

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// Sender transmits encrypted audio frames to a single remote peer over
// UDP, holding one long-lived socket per peer rather than dialing per frame.
type Sender struct {
	conn   *net.UDPConn
	key    []byte
	serial atomic.Uint64
}

// Dial opens a UDP socket to addr for sending audio frames encrypted
// under key (32 raw bytes, AES-256).
func Dial(addr string, key []byte) (*Sender, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to dial %s: %w", addr, err)
	}
	s := &Sender{conn: conn, key: key}
	// Seed from the current unix-millisecond timestamp rather than 0, so a
	// restarted sender's serials still exceed whatever a receiver last saw
	// from a previous session using the same key.
	s.serial.Store(uint64(time.Now().UnixMilli()))
	return s, nil
}

// SendAudio seals and transmits one chunk of PCM samples, using a
// strictly-increasing serial for replay protection on the receiving end.
func (s *Sender) SendAudio(samples []int16) error {
	serial := s.serial.Add(1)
	frame, err := seal(s.key, serial, encodeAudioPayload(samples))
	if err != nil {
		return fmt.Errorf("transport: failed to seal audio frame: %w", err)
	}
	if _, err := s.conn.Write(frame); err != nil {
		return fmt.Errorf("transport: failed to send frame: %w", err)
	}
	return nil
}

// RotateKey sends newKey to the peer sealed under the current key, waits
// up to timeout for an acknowledgement sealed under newKey, and only then
// switches SendAudio over to it. If no ack arrives in time the current key
// stays in effect and the caller may retry.
func (s *Sender) RotateKey(newKey []byte, timeout time.Duration) error {
	serial := s.serial.Add(1)
	frame, err := seal(s.key, serial, encodePassphraseChange(newKey))
	if err != nil {
		return fmt.Errorf("transport: failed to seal passphrase-change frame: %w", err)
	}
	if _, err := s.conn.Write(frame); err != nil {
		return fmt.Errorf("transport: failed to send passphrase-change frame: %w", err)
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("transport: failed to set read deadline: %w", err)
	}
	defer s.conn.SetReadDeadline(time.Time{})

	buf := make([]byte, 512)
	for {
		n, err := s.conn.Read(buf)
		if err != nil {
			return fmt.Errorf("transport: no passphrase-change ack received: %w", err)
		}
		_, plaintext, err := open(newKey, buf[:n])
		if err != nil {
			continue // not yet sealed under newKey: stale traffic under the old key
		}
		if messageType(plaintext) != msgPassphraseChangeAck {
			continue
		}
		s.key = newKey
		return nil
	}
}

// Close closes the underlying socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
