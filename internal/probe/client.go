// Package probe implements the resilient HTTP client every analysis
// module probes through. One Client owns one connection pool for its
// lifetime; all concurrent target tasks share it, and the pool's
// per-host and global limits are the transport-level backpressure.
package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/subsort/subsort/pkg/types"
)

// MaxBodyBytes caps how much of a response body is read. Anything past
// the cap is silently truncated.
const MaxBodyBytes = 10 << 20

// Backoff parameters for the retry loop: wait = min(base*2^attempt, cap)
// plus up to one second of uniform jitter.
const (
	backoffBase = 500 * time.Millisecond
	backoffCap  = 5 * time.Second
)

// Options configures a Client. Zero values fall back to the defaults in
// New.
type Options struct {
	Timeout         time.Duration
	Retries         int
	Concurrency     int
	UserAgent       string
	FollowRedirects bool
	SkipTLSVerify   bool

	// RequestsPerSecond throttles all attempts across all tasks when
	// positive. Zero means unlimited.
	RequestsPerSecond float64
}

// Client executes single logical requests with retry, backoff, and
// dual-scheme fallback. Safe for concurrent use.
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     *slog.Logger
}

// New builds a Client owning its own transport. The idle connection pool
// is sized at twice the configured concurrency with a fixed per-host cap,
// so the socket budget tracks the orchestrator's width without being
// coupled to it.
func New(opts Options, log *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	transport := &http.Transport{
		MaxIdleConns:        opts.Concurrency * 2,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: opts.Timeout,
		DialContext:         dialContext(opts.Timeout),
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.SkipTLSVerify,
		},
	}

	hc := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}
	if !opts.FollowRedirects {
		hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		http:    hc,
		opts:    opts,
		limiter: limiter,
		log:     log.With("component", "probe"),
	}
}

// Probe executes one logical request against url. It retries timeouts
// and transient transport errors up to the configured count with
// exponential backoff, and never returns an error: retry exhaustion is a
// terminal error-kind result, not a fault.
func (c *Client) Probe(ctx context.Context, rawURL, method string, headers map[string]string) *types.ProbeResult {
	start := time.Now()
	retries := c.opts.Retries

	var lastKind types.ErrKind
	attempts := 0
	for attempt := 0; attempt <= retries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				lastKind = types.ErrOther
				break
			}
		}

		attempts++
		res, kind := c.attempt(ctx, rawURL, method, headers)
		if kind == "" {
			res.Attempts = attempts
			res.Elapsed = time.Since(start)
			return res
		}
		lastKind = kind
		c.log.Debug("probe attempt failed",
			"url", rawURL, "attempt", attempts, "kind", string(kind))

		if attempt < retries {
			if !sleepCtx(ctx, backoffDelay(attempt)) {
				break
			}
		}
	}

	return &types.ProbeResult{
		ErrKind:  lastKind,
		Attempts: attempts,
		Elapsed:  time.Since(start),
	}
}

// Get is Probe with the GET method and randomized headers.
func (c *Client) Get(ctx context.Context, rawURL string) *types.ProbeResult {
	return c.Probe(ctx, rawURL, http.MethodGet, nil)
}

// ResolveScheme tries https://target then http://target, in that fixed
// order, and returns the first result carrying an HTTP response together
// with its decoded body and effective URL. The order prefers encrypted
// transport and must not be reversed. When neither scheme answers, ok is
// false and res is the final error-kind result so callers can report why.
func (c *Client) ResolveScheme(ctx context.Context, target types.Target) (res *types.ProbeResult, body, effectiveURL string, ok bool) {
	var last *types.ProbeResult
	for _, scheme := range []string{"https", "http"} {
		u := scheme + "://" + string(target)
		r := c.Get(ctx, u)
		if r.OK() {
			return r, string(r.Body), u, true
		}
		last = r
	}
	return last, "", "", false
}

// attempt runs a single request. An empty kind means success.
func (c *Client) attempt(ctx context.Context, rawURL, method string, headers map[string]string) (*types.ProbeResult, types.ErrKind) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, types.ErrOther
	}

	if headers == nil {
		headers = c.randomHeaders()
	}
	for k, v := range headers {
		if strings.EqualFold(k, "Host") {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		// A partial body after a successful response is still usable;
		// only a zero-byte read with an error counts as a failure.
		if len(body) == 0 {
			return nil, classify(err)
		}
	}

	return &types.ProbeResult{
		StatusCode: resp.StatusCode,
		Reason:     http.StatusText(resp.StatusCode),
		Headers:    resp.Header.Clone(),
		Body:       body,
	}, ""
}

// classify maps a transport error to its retry taxonomy bucket.
func classify(err error) types.ErrKind {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return types.ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return types.ErrTimeout
	}

	var nerr interface{ Temporary() bool }
	switch {
	case errors.As(err, &uerr):
		return types.ErrTransport
	case errors.As(err, &nerr):
		return types.ErrTransport
	default:
		return types.ErrOther
	}
}

func backoffDelay(attempt int) time.Duration {
	d := backoffCap
	// Past a few doublings the shift would overflow; the cap applies
	// anyway.
	if attempt < 4 {
		d = backoffBase << uint(attempt)
	}
	return d + time.Duration(rand.Int63n(int64(time.Second)))
}

// sleepCtx waits for d or until ctx is done, reporting whether the full
// wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
