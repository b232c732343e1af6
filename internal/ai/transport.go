package ai

import (
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	ConnectTimeout     = 10 * time.Second
	DefaultTimeout     = 60 * time.Second
	TranslationTimeout = 90 * time.Second
)

// newHTTPClient returns a client with certificate verification on and a fixed
// connect timeout. The total timeout is set per call through the context.
func newHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: ConnectTimeout,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func newRestyClient(hc *http.Client) *resty.Client {
	return resty.NewWithClient(hc).
		SetHeader("Accept", "application/json").
		SetPreRequestHook(func(_ *resty.Client, r *http.Request) error {
			// no 100-continue round trip
			r.Header.Del("Expect")
			return nil
		})
}

// sanitizeHeaderValue drops CR and LF so a stored key cannot inject headers.
func sanitizeHeaderValue(v string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", "", "\n", "").Replace(v))
}

func endpoint(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + path
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
