package cryptox

import (
	"bytes"
	"strings"
	"testing"
)

const helloWorldMD5 = "3e25960a79dbc69b674cd4ec67a72c62"

func TestFingerprint_KnownVector(t *testing.T) {
	got := Fingerprint([]byte("Hello world"))
	if got != helloWorldMD5 {
		t.Fatalf("Fingerprint(Hello world) = %q, want %q", got, helloWorldMD5)
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB, 0x00, 0x7F}, 4096)

	a := Fingerprint(data)
	b := Fingerprint(append([]byte(nil), data...))
	if a != b {
		t.Fatalf("same bytes gave different fingerprints: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
}

func TestFingerprint_EmptyInput(t *testing.T) {
	if got := Fingerprint(nil); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("unexpected digest of empty input: %q", got)
	}
}

func TestMatchFingerprint_CaseSensitive(t *testing.T) {
	data := []byte("Hello world")

	if !MatchFingerprint(data, helloWorldMD5) {
		t.Fatal("expected lowercase digest to match")
	}
	if MatchFingerprint(data, strings.ToUpper(helloWorldMD5)) {
		t.Fatal("uppercase digest must not match")
	}
	if MatchFingerprint([]byte("Hello world\n"), helloWorldMD5) {
		t.Fatal("different bytes must not match")
	}
}

func TestFingerprintReader_MatchesFingerprint(t *testing.T) {
	data := []byte("Hello world")

	got, n, err := FingerprintReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("FingerprintReader error: %v", err)
	}
	if n != int64(len(data)) {
		t.Fatalf("read %d bytes, want %d", n, len(data))
	}
	if got != helloWorldMD5 {
		t.Fatalf("got %q, want %q", got, helloWorldMD5)
	}
}
