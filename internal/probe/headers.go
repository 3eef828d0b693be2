package probe

import (
	"context"
	"math/rand"
	"net"
	"time"
)

// userAgents is the rotation pool drawn from when the caller supplies no
// explicit headers. Rotation is an anti-fingerprinting measure, not a
// correctness requirement.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:89.0) Gecko/20100101 Firefox/89.0",
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9",
	"en-US,en;q=0.8,es;q=0.6",
}

// UserAgents exposes the rotation pool so tests can assert membership.
func UserAgents() []string {
	out := make([]string, len(userAgents))
	copy(out, userAgents)
	return out
}

// AcceptLanguages exposes the accept-language pool for tests.
func AcceptLanguages() []string {
	out := make([]string, len(acceptLanguages))
	copy(out, acceptLanguages)
	return out
}

// randomHeaders builds the default header set for one attempt, rotating
// the user agent and accept-language. A pinned user agent from the
// configuration wins over rotation.
func (c *Client) randomHeaders() map[string]string {
	ua := c.opts.UserAgent
	if ua == "" {
		ua = userAgents[rand.Intn(len(userAgents))]
	}
	return map[string]string{
		"User-Agent":                ua,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           acceptLanguages[rand.Intn(len(acceptLanguages))],
		"Upgrade-Insecure-Requests": "1",
	}
}

// dialContext returns a dialer whose connect sub-timeout is half the
// total request timeout, leaving the rest for TLS and the read.
func dialContext(total time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &net.Dialer{
		Timeout:   total / 2,
		KeepAlive: 30 * time.Second,
	}
	return d.DialContext
}
