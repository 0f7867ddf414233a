package webhook

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncatePayloadKeepsRuneBoundary(t *testing.T) {
	// Three-byte runes guarantee the byte limit falls mid-rune.
	payload := strings.Repeat("€", maxLoggedPayload/3+10)

	got := truncatePayload(payload)

	if len(got) > maxLoggedPayload {
		t.Errorf("got %d bytes, want at most %d", len(got), maxLoggedPayload)
	}
	if !utf8.ValidString(got) {
		t.Error("truncated payload is not valid UTF-8")
	}
}

func TestTruncatePayloadLeavesShortPayloads(t *testing.T) {
	payload := `{"name": "Maria Souza"}`
	if got := truncatePayload(payload); got != payload {
		t.Errorf("got %q, want the payload unchanged", got)
	}
}
