// Package network builds the HTTP clients used to talk to MyAnimeList and Crunchyroll.
package network

import (
	"net/http"
	"time"

	"github.com/malcr/malcr/constant"
)

const timeout = time.Minute

// NewClient returns a client tuned for a long serial batch of API calls.
// With fingerprint set, TLS handshakes present a Chrome ClientHello; Crunchyroll sits behind
// a CDN that rejects the default Go fingerprint.
func NewClient(fingerprint bool) *http.Client {
	var rt http.RoundTripper = newTransport()
	if fingerprint {
		rt = newFingerprintTransport()
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: userAgent{next: rt},
	}
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}

// userAgent stamps constant.UserAgent on requests that do not carry one.
type userAgent struct {
	next http.RoundTripper
}

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", constant.UserAgent)
	return u.next.RoundTrip(clone)
}
