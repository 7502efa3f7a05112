package fingerprint

import (
	"net/http"
	"testing"
)

func TestTransport_KnownProfiles(t *testing.T) {
	for _, p := range []Profile{ProfileChrome, ProfileFirefox, ProfileGo} {
		rt, err := Transport(p)
		if err != nil {
			t.Errorf("Transport(%q) error: %v", p, err)
			continue
		}
		if rt == nil {
			t.Errorf("Transport(%q) returned nil RoundTripper", p)
		}
	}
}

func TestTransport_EmptyDefaultsToGo(t *testing.T) {
	rt, err := Transport("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr, ok := rt.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", rt)
	}
	if tr.DialTLSContext != nil {
		t.Error("empty profile should not install a custom TLS dialer")
	}
}

func TestTransport_UnknownProfile(t *testing.T) {
	if _, err := Transport("netscape"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}
