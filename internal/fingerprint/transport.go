package fingerprint

import (
	"context"
	"fmt"
	"net"
	"net/http"

	utls "github.com/refraction-networking/utls"
)

// Profile selects a TLS ClientHello fingerprint for outbound SERP requests.
// Search engines fingerprint the handshake as well as the headers, so the
// corroboration checker presents a browser profile instead of Go's default.
type Profile string

const (
	ProfileChrome  Profile = "chrome"
	ProfileFirefox Profile = "firefox"
	ProfileGo      Profile = "go" // standard library TLS, mainly for tests
)

// Transport returns an http.RoundTripper whose TLS handshake matches the
// requested profile. ProfileGo returns a plain cloned http.Transport.
func Transport(p Profile) (http.RoundTripper, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()

	if p == ProfileGo || p == "" {
		return base, nil
	}

	var hello utls.ClientHelloID
	switch p {
	case ProfileChrome:
		hello = utls.HelloChrome_Auto
	case ProfileFirefox:
		hello = utls.HelloFirefox_Auto
	default:
		return nil, fmt.Errorf("unknown fingerprint profile %q", p)
	}

	base.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		tcpConn, err := base.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		uConn := utls.UClient(tcpConn, &utls.Config{ServerName: host}, hello)
		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("utls handshake: %w", err)
		}
		return uConn, nil
	}

	return base, nil
}
