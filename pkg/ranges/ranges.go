package ranges

import (
	"fmt"
	"net"
	"strings"

	"github.com/projectdiscovery/gologger"
)

// Subnet describes a single published network block.
type Subnet struct {
	Network *net.IPNet
	Token   string // raw CIDR token as it appeared in the input
}

func (s Subnet) String() string {
	return s.Network.String()
}

// PrefixLen returns the number of fixed leading bits of the block.
func (s Subnet) PrefixLen() int {
	ones, _ := s.Network.Mask.Size()
	return ones
}

// Parse turns comma- or newline-delimited CIDR text into subnet descriptors.
// Malformed tokens are skipped with a warning; duplicates are preserved in
// input order. Input that yields no valid IPv4 block at all is an error.
func Parse(text string) ([]Subnet, error) {
	normalized := strings.ReplaceAll(text, ",", "\n")

	var subnets []Subnet
	for _, token := range strings.Split(normalized, "\n") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		_, network, err := net.ParseCIDR(token)
		if err != nil {
			gologger.Warning().Msgf("skipping malformed CIDR %q: %v", token, err)
			continue
		}
		if network.IP.To4() == nil {
			gologger.Warning().Msgf("skipping non-IPv4 range %q", token)
			continue
		}
		subnets = append(subnets, Subnet{Network: network, Token: token})
	}

	if len(subnets) == 0 {
		return nil, fmt.Errorf("no valid IPv4 ranges found in input")
	}
	return subnets, nil
}
