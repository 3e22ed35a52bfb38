package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUdpKeyRequiresExactly32RawBytes(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.key")
	if err := os.WriteFile(good, make([]byte, 32), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadUdpKey(good); err != nil {
		t.Fatalf("loadUdpKey(32 raw bytes): %v", err)
	}

	short := filepath.Join(dir, "short.key")
	if err := os.WriteFile(short, make([]byte, 16), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadUdpKey(short); err == nil {
		t.Fatal("expected error for a key file shorter than 32 bytes")
	}

	hexEncoded := filepath.Join(dir, "hex.key")
	if err := os.WriteFile(hexEncoded, []byte("0000000000000000000000000000000000000000000000000000000000000000"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadUdpKey(hexEncoded); err == nil {
		t.Fatal("expected error for a 64-character hex-encoded file (not raw 32 bytes)")
	}
}
