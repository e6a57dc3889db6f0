package fingerprint

import (
	"fmt"
	"net/http"
	"testing"
)

func TestDerive_Deterministic(t *testing.T) {
	m := Metadata{
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64)",
		AcceptLanguage: "en-US,en;q=0.9",
		AcceptEncoding: "gzip, deflate, br",
	}
	first := Derive(m)
	second := Derive(m)
	if first != second {
		t.Fatalf("expected identical fingerprints, got %s and %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected hex sha256 output, got %q", first)
	}
}

func TestDerive_MissingSignalsStillValid(t *testing.T) {
	fp := Derive(Metadata{})
	if len(fp) != 64 {
		t.Fatalf("expected valid fingerprint for empty metadata, got %q", fp)
	}
	if fp == Derive(Metadata{UserAgent: "curl/8.0"}) {
		t.Fatalf("empty and non-empty metadata must not collide")
	}
}

func TestDerive_DistinctUserAgents(t *testing.T) {
	base := Metadata{
		AcceptLanguage: "en-US",
		AcceptEncoding: "gzip",
	}
	seen := make(map[string]string)
	for i := 0; i < 500; i++ {
		m := base
		m.UserAgent = fmt.Sprintf("agent-%d/1.%d", i, i%7)
		fp := Derive(m)
		if prev, ok := seen[fp]; ok {
			t.Fatalf("collision between %q and %q", prev, m.UserAgent)
		}
		seen[fp] = m.UserAgent
	}
}

func TestDerive_SignalBoundaries(t *testing.T) {
	// Moving bytes between signals must change the canonical form.
	a := Derive(Metadata{UserAgent: "ab", AcceptLanguage: "c"})
	b := Derive(Metadata{UserAgent: "a", AcceptLanguage: "bc"})
	if a == b {
		t.Fatalf("signal boundaries must be preserved in the canonical form")
	}
}

func TestFromHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("User-Agent", "test-agent")
	h.Set("Accept-Language", "de-DE")
	h.Set("Accept-Encoding", "br")

	m := FromHeaders(h)
	if m.UserAgent != "test-agent" || m.AcceptLanguage != "de-DE" || m.AcceptEncoding != "br" {
		t.Fatalf("unexpected metadata: %+v", m)
	}
	if Derive(m) != Derive(FromHeaders(h)) {
		t.Fatalf("header extraction must be deterministic")
	}
}
