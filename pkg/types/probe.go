package types

import (
	"net/http"
	"time"
)

// ErrKind classifies a failed probe after all retries are exhausted.
type ErrKind string

const (
	ErrTimeout   ErrKind = "timeout"
	ErrTransport ErrKind = "transport_error"
	ErrOther     ErrKind = "other"
)

// ProbeResult is the outcome of one logical HTTP request. Exactly one of
// the status side (StatusCode/Reason/Headers/Body) or the error side
// (ErrKind) is populated; Attempts and Elapsed are always set.
type ProbeResult struct {
	StatusCode int
	Reason     string
	Headers    http.Header
	Body       []byte

	ErrKind ErrKind

	Attempts int
	Elapsed  time.Duration
}

// OK reports whether the probe produced an HTTP response.
func (r *ProbeResult) OK() bool {
	return r != nil && r.ErrKind == ""
}

// Header returns the first value of the named response header,
// case-insensitively, or "" when absent or when the probe failed.
func (r *ProbeResult) Header(name string) string {
	if !r.OK() || r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}
