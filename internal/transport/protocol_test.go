package transport

import "testing"

func TestAudioPayloadRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 100}
	payload := encodeAudioPayload(samples)

	if messageType(payload) != msgAudio {
		t.Fatalf("messageType = %x, want msgAudio", messageType(payload))
	}

	decoded, err := decodeAudioPayload(payload)
	if err != nil {
		t.Fatalf("decodeAudioPayload: %v", err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("length = %d, want %d", len(decoded), len(samples))
	}
	for i := range samples {
		if decoded[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, decoded[i], samples[i])
		}
	}
}

func TestDecodeAudioPayloadRejectsWrongType(t *testing.T) {
	msg := encodePassphraseChange(make([]byte, keySize))
	if _, err := decodeAudioPayload(msg); err == nil {
		t.Fatal("expected error decoding a non-audio payload as audio")
	}
}

func TestDecodeAudioPayloadRejectsOddLength(t *testing.T) {
	bad := []byte{msgAudio, 0x01, 0x02, 0x03}
	if _, err := decodeAudioPayload(bad); err == nil {
		t.Fatal("expected error for odd-length payload body")
	}
}
