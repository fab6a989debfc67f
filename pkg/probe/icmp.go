package probe

import (
	"context"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

var icmpSeq uint32

// ICMPProber measures latency with an echo request/reply round trip. Raw ICMP
// sockets require root/admin privileges on most systems; a socket setup
// failure degrades to an Unknown result rather than an error.
type ICMPProber struct {
	Timeout time.Duration
}

// NewICMPProber returns an echo prober with the given per-call timeout.
func NewICMPProber(timeout time.Duration) *ICMPProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ICMPProber{Timeout: timeout}
}

// Probe sends a single echo request to addr and waits for the matching reply
// until the timeout expires. One transient socket is opened per call and
// closed on every exit path.
func (p *ICMPProber) Probe(ctx context.Context, addr string) Result {
	ip := net.ParseIP(addr)
	if ip == nil || ip.To4() == nil {
		return Result{Addr: addr, Kind: KindUnknown}
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return Result{Addr: addr, Kind: KindUnknown}
	}
	defer func() {
		_ = conn.Close()
	}()

	id := os.Getpid() & 0xffff
	seq := int(atomic.AddUint32(&icmpSeq, 1) & 0xffff)
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: []byte("edgeping"),
		},
	}
	payload, err := msg.Marshal(nil)
	if err != nil {
		return Result{Addr: addr, Kind: KindUnknown}
	}

	deadline := time.Now().Add(p.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return Result{Addr: addr, Kind: KindUnknown}
	}

	dst := &net.IPAddr{IP: ip}
	start := time.Now()
	if _, err := conn.WriteTo(payload, dst); err != nil {
		return Result{Addr: addr, Kind: Classify(err)}
	}

	protocol := ipv4.ICMPTypeEchoReply.Protocol()
	reply := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(reply)
		if err != nil {
			return Result{Addr: addr, Kind: Classify(err)}
		}
		if peerAddr, ok := peer.(*net.IPAddr); !ok || !peerAddr.IP.Equal(ip) {
			continue
		}
		rm, err := icmp.ParseMessage(protocol, reply[:n])
		if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || echo.ID != id || echo.Seq != seq {
			continue
		}
		return Result{Addr: addr, RTT: time.Since(start), Success: true}
	}
}
