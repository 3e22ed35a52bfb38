// Package transport implements the encrypted UDP audio channel: AES-256-GCM
// sealing/opening over a fixed wire format, strictly-increasing replay
// protection with a bounded reorder backlog, and per-peer auth-failure
// tracking that triggers a firewall ban.
package transport

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/erikh/hoover/internal/herr"
)

const (
	nonceSize = 12
	serialSize = 8
	keySize   = 32 // AES-256
)

// KeySize is the required length, in bytes, of a raw AES-256 frame key.
const KeySize = keySize

// cipherFor builds an AES-256-GCM AEAD from a 32-byte key. Standard
// library crypto/aes and crypto/cipher are used directly: no repository
// across the retrieval pack reaches for a third-party AEAD implementation,
// making stdlib the ecosystem's own idiom here (see DESIGN.md).
func cipherFor(key []byte) (cipher.AEAD, error) {
	if len(key) != keySize {
		return nil, herr.Wrap(herr.KindInvalidKey, "transport.cipherFor",
			fmt.Errorf("key must be %d bytes, got %d", keySize, len(key)))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, herr.Wrap(herr.KindInvalidKey, "transport.cipherFor", err)
	}
	return cipher.NewGCM(block)
}

// seal encrypts plaintext under key, using serial as the additional
// authenticated data (8-byte big-endian), and returns
// nonce ‖ serial ‖ ciphertext‖tag.
func seal(key []byte, serial uint64, plaintext []byte) ([]byte, error) {
	aead, err := cipherFor(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("transport: failed to generate nonce: %w", err)
	}

	aad := make([]byte, serialSize)
	binary.BigEndian.PutUint64(aad, serial)

	sealed := aead.Seal(nil, nonce, plaintext, aad)

	out := make([]byte, 0, nonceSize+serialSize+len(sealed))
	out = append(out, nonce...)
	out = append(out, aad...)
	out = append(out, sealed...)
	return out, nil
}

// peekSerial extracts the unencrypted serial carried in a frame's
// associated data without verifying authenticity, so a stale replay can be
// rejected before paying for AEAD verification.
func peekSerial(frame []byte) (uint64, error) {
	if len(frame) < nonceSize+serialSize {
		return 0, herr.Wrap(herr.KindFrameAuthFailure, "transport.peekSerial",
			fmt.Errorf("frame too short: %d bytes", len(frame)))
	}
	return binary.BigEndian.Uint64(frame[nonceSize : nonceSize+serialSize]), nil
}

// open reverses seal, returning the serial and plaintext, or a
// FrameAuthFailure error if authentication fails.
func open(key []byte, frame []byte) (uint64, []byte, error) {
	if len(frame) < nonceSize+serialSize {
		return 0, nil, herr.Wrap(herr.KindFrameAuthFailure, "transport.open",
			fmt.Errorf("frame too short: %d bytes", len(frame)))
	}

	aead, err := cipherFor(key)
	if err != nil {
		return 0, nil, err
	}

	nonce := frame[:nonceSize]
	aad := frame[nonceSize : nonceSize+serialSize]
	ciphertext := frame[nonceSize+serialSize:]
	serial := binary.BigEndian.Uint64(aad)

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return serial, nil, herr.Wrap(herr.KindFrameAuthFailure, "transport.open", err)
	}
	return serial, plaintext, nil
}
