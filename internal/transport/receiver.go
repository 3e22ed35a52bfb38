package transport

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/erikh/hoover/internal/firewall"
	"github.com/erikh/hoover/internal/herr"
)

// peerState tracks replay protection and recent auth-failure history for
// one remote address.
type peerState struct {
	lastSerial   uint64
	failures     []time.Time
}

// Receiver listens for encrypted audio frames from any number of peers,
// verifying and reordering them within a bounded backlog before handing
// PCM samples to Handler.
type Receiver struct {
	conn            *net.UDPConn
	key             []byte
	backlog         int
	maxFail         int
	failWin         time.Duration
	banFor          time.Duration
	firewall        firewall.Backend
	rotationEnabled bool

	mu    sync.Mutex
	peers map[string]*peerState
	held  map[string]map[uint64][]int16 // addr -> serial -> samples, awaiting in-order delivery

	Handler func(addr string, samples []int16)
}

// NewReceiver binds addr and prepares peer bookkeeping. backlog bounds how
// many out-of-order frames per peer are held before the receiver gives up
// waiting for the gap and advances anyway — a bounded reorder window, not
// an unbounded buffer.
func NewReceiver(addr string, key []byte, backlog, maxFail int, failWindow, banFor time.Duration, fw firewall.Backend, rotationEnabled bool) (*Receiver, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, herr.Wrap(herr.KindFirewallBackend, "transport.NewReceiver", err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, herr.Wrap(herr.KindFirewallBackend, "transport.NewReceiver", err)
	}
	return &Receiver{
		conn:            conn,
		key:             key,
		backlog:         backlog,
		maxFail:         maxFail,
		failWin:         failWindow,
		banFor:          banFor,
		firewall:        fw,
		rotationEnabled: rotationEnabled,
		peers:           make(map[string]*peerState),
		held:            make(map[string]map[uint64][]int16),
	}, nil
}

// Run reads and processes frames until stop is closed.
func (r *Receiver) Run(stop <-chan struct{}) error {
	buf := make([]byte, 65536)
	go func() {
		<-stop
		r.conn.Close()
	}()

	for {
		n, addr, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-stop:
				return nil
			default:
				return herr.Wrap(herr.KindFirewallBackend, "transport.Receiver.Run", err)
			}
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		r.handleFrame(addr.String(), frame)
	}
}

func (r *Receiver) handleFrame(peerAddr string, frame []byte) {
	serial, err := peekSerial(frame)
	if err != nil {
		r.recordFailure(peerAddr)
		slog.Warn("dropping malformed frame", "peer", peerAddr, "error", err)
		return
	}

	r.mu.Lock()
	state, ok := r.peers[peerAddr]
	if !ok {
		state = &peerState{}
		r.peers[peerAddr] = state
	}
	if serial <= state.lastSerial && state.lastSerial != 0 {
		r.mu.Unlock()
		slog.Warn("dropping replayed frame", "peer", peerAddr, "serial", serial, "last", state.lastSerial)
		return
	}
	r.mu.Unlock()

	_, plaintext, err := open(r.key, frame)
	if err != nil {
		r.recordFailure(peerAddr)
		slog.Warn("dropping frame: auth failure", "peer", peerAddr, "error", err)
		return
	}

	switch messageType(plaintext) {
	case msgAudio:
		samples, err := decodeAudioPayload(plaintext)
		if err != nil {
			slog.Warn("dropping malformed audio payload", "peer", peerAddr, "error", err)
			return
		}
		r.mu.Lock()
		if state.lastSerial == 0 && len(r.held[peerAddr]) == 0 && serial > 0 {
			// First audio frame from this peer: start its cursor here, since
			// senders seed serials from the clock rather than from 1.
			state.lastSerial = serial - 1
		}
		r.mu.Unlock()
		r.deliverInOrder(peerAddr, serial, samples)
	case msgPassphraseChange:
		r.handlePassphraseChange(peerAddr, plaintext)
	default:
		slog.Debug("ignoring unrecognized control message", "peer", peerAddr, "serial", serial)
	}
}

// handlePassphraseChange adopts a peer-requested key rotation, if enabled,
// and acknowledges it under the new key so the sender knows it is safe to
// switch its own outgoing traffic over.
func (r *Receiver) handlePassphraseChange(peerAddr string, plaintext []byte) {
	if !r.rotationEnabled {
		slog.Warn("rejecting passphrase-change frame: rotation not enabled", "peer", peerAddr)
		return
	}
	newKey, err := decodePassphraseChange(plaintext)
	if err != nil {
		slog.Warn("dropping malformed passphrase-change frame", "peer", peerAddr, "error", err)
		return
	}

	raddr, err := net.ResolveUDPAddr("udp", peerAddr)
	if err != nil {
		slog.Error("failed to resolve peer for passphrase-change ack", "peer", peerAddr, "error", err)
		return
	}
	ackFrame, err := seal(newKey, uint64(time.Now().UnixMilli()), encodePassphraseChangeAck())
	if err != nil {
		slog.Error("failed to seal passphrase-change ack", "peer", peerAddr, "error", err)
		return
	}

	r.key = newKey
	if _, err := r.conn.WriteToUDP(ackFrame, raddr); err != nil {
		slog.Error("failed to send passphrase-change ack", "peer", peerAddr, "error", err)
		return
	}
	slog.Info("rotated udp frame key", "peer", peerAddr)
}

// deliverInOrder advances a peer's serial cursor, holding out-of-order
// frames in a bounded backlog until the gap is filled or the backlog
// limit forces the receiver to skip ahead.
func (r *Receiver) deliverInOrder(peerAddr string, serial uint64, samples []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.peers[peerAddr]
	pending, ok := r.held[peerAddr]
	if !ok {
		pending = make(map[uint64][]int16)
		r.held[peerAddr] = pending
	}

	expect := state.lastSerial + 1
	if serial == expect {
		r.dispatch(peerAddr, samples)
		state.lastSerial = serial
		r.drainPending(peerAddr, state, pending)
		return
	}

	if serial > expect {
		pending[serial] = samples
		if len(pending) > r.backlog {
			// Give up waiting for the gap: advance past it, matching the
			// bounded (not unbounded) reordering window the design allows.
			r.advancePastGap(peerAddr, state, pending)
		}
	}
}

func (r *Receiver) drainPending(peerAddr string, state *peerState, pending map[uint64][]int16) {
	for {
		next := state.lastSerial + 1
		samples, ok := pending[next]
		if !ok {
			return
		}
		r.dispatch(peerAddr, samples)
		state.lastSerial = next
		delete(pending, next)
	}
}

func (r *Receiver) advancePastGap(peerAddr string, state *peerState, pending map[uint64][]int16) {
	var minSerial uint64
	first := true
	for s := range pending {
		if first || s < minSerial {
			minSerial = s
			first = false
		}
	}
	if first {
		return
	}
	state.lastSerial = minSerial - 1
	r.drainPending(peerAddr, state, pending)
}

func (r *Receiver) dispatch(peerAddr string, samples []int16) {
	if r.Handler != nil {
		r.Handler(peerAddr, samples)
	}
}

// recordFailure tracks an auth failure and triggers a firewall ban once
// maxFail failures occur within failWin (default: 3 failures in 10s).
func (r *Receiver) recordFailure(peerAddr string) {
	r.mu.Lock()
	state, ok := r.peers[peerAddr]
	if !ok {
		state = &peerState{}
		r.peers[peerAddr] = state
	}

	now := time.Now()
	cutoff := now.Add(-r.failWin)
	kept := state.failures[:0]
	for _, t := range state.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	state.failures = append(kept, now)
	shouldBan := len(state.failures) >= r.maxFail
	r.mu.Unlock()

	if shouldBan && r.firewall != nil {
		ip, _, err := net.SplitHostPort(peerAddr)
		if err != nil {
			ip = peerAddr
		}
		if err := r.firewall.Ban(ip, r.banFor); err != nil {
			slog.Error("failed to ban peer after repeated auth failures", "peer", peerAddr, "error", err)
		} else {
			slog.Warn("banned peer after repeated auth failures", "peer", peerAddr, "duration", r.banFor)
		}
	}
}

// Close closes the listening socket.
func (r *Receiver) Close() error {
	return r.conn.Close()
}
