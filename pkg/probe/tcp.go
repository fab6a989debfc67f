package probe

import (
	"context"
	"net"
	"strconv"
	"time"
)

const (
	// DefaultPort is the port used for transport handshake probes. Edge
	// networks invariably answer on it.
	DefaultPort = 443
	// DefaultTimeout bounds a single probe attempt.
	DefaultTimeout = time.Second
	// DefaultAttempts is how many handshakes are averaged per address.
	DefaultAttempts = 3
)

// TCPProber measures latency as the time to complete a transport handshake.
// Each call opens and closes one transient connection per attempt and holds
// no state between calls.
type TCPProber struct {
	Port     int
	Timeout  time.Duration
	Attempts int
}

// NewTCPProber returns a TCP handshake prober. Zero values fall back to the
// package defaults.
func NewTCPProber(port int, timeout time.Duration, attempts int) *TCPProber {
	if port <= 0 {
		port = DefaultPort
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &TCPProber{Port: port, Timeout: timeout, Attempts: attempts}
}

// Probe dials addr up to Attempts times and reports the average handshake
// time over the successful attempts. If every attempt fails, the result
// carries the kind of the last failure.
func (p *TCPProber) Probe(ctx context.Context, addr string) Result {
	target := net.JoinHostPort(addr, strconv.Itoa(p.Port))

	var total time.Duration
	succeeded := 0
	kind := KindUnknown
	for i := 0; i < p.Attempts; i++ {
		if ctx.Err() != nil {
			break
		}
		rtt, err := p.dial(ctx, target)
		if err != nil {
			kind = Classify(err)
			continue
		}
		total += rtt
		succeeded++
	}

	if succeeded == 0 {
		return Result{Addr: addr, Kind: kind}
	}
	return Result{Addr: addr, RTT: total / time.Duration(succeeded), Success: true}
}

func (p *TCPProber) dial(ctx context.Context, target string) (time.Duration, error) {
	dialCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	var dialer net.Dialer
	start := time.Now()
	conn, err := dialer.DialContext(dialCtx, "tcp", target)
	if err != nil {
		return 0, err
	}
	rtt := time.Since(start)
	_ = conn.Close()
	return rtt, nil
}
