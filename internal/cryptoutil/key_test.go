package cryptoutil

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"testing"
)

func TestParseKeyBase64(t *testing.T) {
	key := make([]byte, 32)
	encoded := base64.StdEncoding.EncodeToString(key)
	parsed, err := ParseKey(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed) != 32 {
		t.Fatalf("unexpected key length: %d", len(parsed))
	}
}

func TestParseKeyHexPrefix(t *testing.T) {
	key := make([]byte, 32)
	parsed, err := ParseKey("hex:" + hex.EncodeToString(key))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed) != 32 {
		t.Fatalf("unexpected key length: %d", len(parsed))
	}
}

func TestParseKeyRejectsShortKey(t *testing.T) {
	if _, err := ParseKey(hex.EncodeToString(make([]byte, 16))); err == nil {
		t.Fatalf("expected error for 16-byte key")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	plain := []byte("influx:\n  host: localhost\n")
	ciphertext, err := EncryptConfig(plain, key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := DecryptConfig(ciphertext, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestDecryptConfigRejectsBadHeader(t *testing.T) {
	key := make([]byte, 32)
	if _, err := DecryptConfig([]byte("XYZ1 not ours, wrong magic bytes"), key); err == nil {
		t.Fatalf("expected header error")
	}
}
