package transport

import (
	"encoding/binary"
	"fmt"
)

// Message type tag carried as the first byte of the decrypted plaintext.
// This lives inside the AEAD-protected payload, not in the wire header,
// so the on-the-wire frame format stays exactly nonce‖serial‖ciphertext‖tag.
const (
	msgAudio             byte = 0x00
	msgPassphraseChange  byte = 0x01
	msgPassphraseChangeAck byte = 0x02
)

// AudioFrame is one plaintext PCM payload ready to encrypt and send.
type AudioFrame struct {
	Serial  uint64
	Samples []int16
}

func encodeAudioPayload(samples []int16) []byte {
	buf := make([]byte, 1+len(samples)*2)
	buf[0] = msgAudio
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[1+i*2:], uint16(s))
	}
	return buf
}

func decodeAudioPayload(plaintext []byte) ([]int16, error) {
	if len(plaintext) < 1 || plaintext[0] != msgAudio {
		return nil, fmt.Errorf("transport: not an audio payload")
	}
	body := plaintext[1:]
	if len(body)%2 != 0 {
		return nil, fmt.Errorf("transport: audio payload has odd byte length")
	}
	samples := make([]int16, len(body)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(body[i*2:]))
	}
	return samples, nil
}

// encodePassphraseChange builds the optional key-rotation control message,
// carrying the raw replacement key as its body.
func encodePassphraseChange(newKey []byte) []byte {
	buf := make([]byte, 1+len(newKey))
	buf[0] = msgPassphraseChange
	copy(buf[1:], newKey)
	return buf
}

// decodePassphraseChange extracts the replacement key from a
// msgPassphraseChange payload.
func decodePassphraseChange(plaintext []byte) ([]byte, error) {
	if len(plaintext) < 1 || plaintext[0] != msgPassphraseChange {
		return nil, fmt.Errorf("transport: not a passphrase-change payload")
	}
	key := plaintext[1:]
	if len(key) != keySize {
		return nil, fmt.Errorf("transport: passphrase-change key must be %d bytes, got %d", keySize, len(key))
	}
	return key, nil
}

// encodePassphraseChangeAck builds the acknowledgement a receiver seals
// under the newly-adopted key once it has switched over.
func encodePassphraseChangeAck() []byte {
	return []byte{msgPassphraseChangeAck}
}

func messageType(plaintext []byte) byte {
	if len(plaintext) == 0 {
		return 0xFF
	}
	return plaintext[0]
}
