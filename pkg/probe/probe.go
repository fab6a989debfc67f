package probe

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"
)

// ErrorKind classifies a failed probe.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindTimeout           ErrorKind = "timeout"
	KindConnectionRefused ErrorKind = "connection-refused"
	KindUnreachable       ErrorKind = "unreachable"
	KindUnknown           ErrorKind = "unknown"
)

// Result is the outcome of a single latency measurement. RTT is meaningful
// only when Success is set.
type Result struct {
	Addr    string
	RTT     time.Duration
	Success bool
	Kind    ErrorKind
}

// Prober performs one bounded-time latency measurement against an address.
// Implementations must return within the configured timeout and must absorb
// every failure into a Result instead of panicking.
type Prober interface {
	Probe(ctx context.Context, addr string) Result
}

// Classify maps a network error to its probe error kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindConnectionRefused
	}
	if errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return KindUnreachable
	}
	return KindUnknown
}
