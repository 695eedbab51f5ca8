package util

import "testing"

func TestChecksum(t *testing.T) {
	data := []byte("%PDF-1.4 sample")
	got := Checksum(data)
	if got != Checksum(data) {
		t.Fatalf("expected stable checksum, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("checksum contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	if got == Checksum([]byte("other")) {
		t.Fatal("expected different inputs to produce different checksums")
	}
}
