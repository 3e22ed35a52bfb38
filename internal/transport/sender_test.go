package transport

import (
	"net"
	"testing"
	"time"
)

func TestSendAudioRoundTripsThroughSeal(t *testing.T) {
	key := testKey()
	fake, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("failed to bind fake receiver: %v", err)
	}
	defer fake.Close()

	sender, err := Dial(fake.LocalAddr().String(), key)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer sender.Close()

	if err := sender.SendAudio([]int16{1, 2, 3}); err != nil {
		t.Fatalf("SendAudio: %v", err)
	}

	buf := make([]byte, 512)
	fake.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := fake.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP: %v", err)
	}
	_, plaintext, err := open(key, buf[:n])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	samples, err := decodeAudioPayload(plaintext)
	if err != nil {
		t.Fatalf("decodeAudioPayload: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("samples = %v, want 3 elements", samples)
	}
}

func TestRotateKeySwitchesKeyOnlyAfterAck(t *testing.T) {
	key := testKey()
	newKey := make([]byte, keySize)
	for i := range newKey {
		newKey[i] = 0x5A
	}

	fake, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("failed to bind fake receiver: %v", err)
	}
	defer fake.Close()

	sender, err := Dial(fake.LocalAddr().String(), key)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer sender.Close()

	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 512)
		fake.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, raddr, err := fake.ReadFromUDP(buf)
		if err != nil {
			done <- err
			return
		}
		_, plaintext, err := open(key, buf[:n])
		if err != nil {
			done <- err
			return
		}
		gotKey, err := decodePassphraseChange(plaintext)
		if err != nil {
			done <- err
			return
		}
		ack, err := seal(gotKey, 1, encodePassphraseChangeAck())
		if err != nil {
			done <- err
			return
		}
		_, err = fake.WriteToUDP(ack, raddr)
		done <- err
	}()

	if err := sender.RotateKey(newKey, 2*time.Second); err != nil {
		t.Fatalf("RotateKey: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("fake receiver side failed: %v", err)
	}

	if string(sender.key) != string(newKey) {
		t.Fatal("expected sender to adopt the new key after receiving the ack")
	}
}
