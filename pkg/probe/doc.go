// Package probe measures round-trip latency to individual addresses.
//
// Two probers are provided:
//   - TCPProber: times a transport handshake against a fixed port and needs
//     no special privileges. This is the default.
//   - ICMPProber: times an echo request/reply exchange. Raw ICMP sockets
//     require root/admin privileges on most systems.
//
// Every failure is absorbed into a Result with Success=false and a
// classified error kind (timeout, connection-refused, unreachable, unknown);
// a prober never blocks past its timeout and never panics.
package probe
