package sampler

import (
	"encoding/binary"
	"math/rand"
	"net"
	"time"

	"github.com/projectdiscovery/edgeping/pkg/ranges"
	"github.com/projectdiscovery/mapcidr"
)

const (
	// EnumerationThreshold is the prefix length at or above which a block is
	// fully enumerated instead of sampled.
	EnumerationThreshold = 24
	// DefaultSampleSize bounds how many addresses are drawn from a block
	// larger than the enumeration threshold, regardless of its size.
	DefaultSampleSize = 256
)

// Candidate is a single IPv4 address slated for probing, tagged with the
// block it was drawn from.
type Candidate struct {
	Addr   string
	Subnet string
}

// Sampler expands subnet descriptors into a bounded candidate set.
type Sampler struct {
	sampleSize int
	rng        *rand.Rand
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithSampleSize overrides the per-block sampling cap.
func WithSampleSize(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.sampleSize = n
		}
	}
}

// WithRandSource injects the random source used for large-block sampling so
// candidate sets can be made reproducible.
func WithRandSource(src rand.Source) Option {
	return func(s *Sampler) {
		s.rng = rand.New(src)
	}
}

// New returns a Sampler. Without options it uses the default sampling cap and
// seeds from system entropy.
func New(opts ...Option) *Sampler {
	s := &Sampler{sampleSize: DefaultSampleSize}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Sample expands every subnet into candidate addresses: full enumeration for
// blocks at or above the threshold, uniform random sampling without
// replacement for larger blocks. The same address reached through overlapping
// blocks is listed once, in first-seen order.
func (s *Sampler) Sample(subnets []ranges.Subnet) []Candidate {
	var candidates []Candidate
	seen := make(map[string]struct{})
	for _, subnet := range subnets {
		for _, addr := range s.expand(subnet) {
			if _, exists := seen[addr]; exists {
				continue
			}
			seen[addr] = struct{}{}
			candidates = append(candidates, Candidate{Addr: addr, Subnet: subnet.String()})
		}
	}
	return candidates
}

func (s *Sampler) expand(subnet ranges.Subnet) []string {
	ones, bits := subnet.Network.Mask.Size()
	if bits != 32 {
		return nil
	}
	if ones >= EnumerationThreshold {
		return enumerate(subnet.Network, ones)
	}
	return s.sampleBlock(subnet.Network, ones)
}

// enumerate returns every host address of a small block. Network and
// broadcast addresses are excluded; /31 and /32 blocks have no such
// addresses and are kept whole.
func enumerate(network *net.IPNet, ones int) []string {
	ips, err := mapcidr.IPAddresses(network.String())
	if err != nil {
		return nil
	}
	if ones >= 31 {
		return ips
	}
	hosts := make([]string, 0, len(ips))
	for _, ipStr := range ips {
		ip := net.ParseIP(ipStr)
		if ip == nil || isNetworkOrBroadcast(ip, network) {
			continue
		}
		hosts = append(hosts, ipStr)
	}
	return hosts
}

// sampleBlock draws up to sampleSize distinct host addresses uniformly from a
// block with more addresses than the enumeration threshold allows. Latency is
// link/geography correlated within nearby ranges, so a uniform sample still
// surfaces representative low-latency addresses.
func (s *Sampler) sampleBlock(network *net.IPNet, ones int) []string {
	base := binary.BigEndian.Uint32(network.IP.To4())
	span := uint64(1) << (32 - uint(ones))
	usable := span - 2 // host offsets, network and broadcast excluded

	want := uint64(s.sampleSize)
	if want > usable {
		want = usable
	}

	picked := make(map[uint64]struct{}, want)
	addrs := make([]string, 0, want)
	for uint64(len(addrs)) < want {
		offset := uint64(s.rng.Int63n(int64(usable))) + 1
		if _, exists := picked[offset]; exists {
			continue
		}
		picked[offset] = struct{}{}

		ip := make(net.IP, net.IPv4len)
		binary.BigEndian.PutUint32(ip, base+uint32(offset))
		addrs = append(addrs, ip.String())
	}
	return addrs
}
