package sampler

import "net"

// isNetworkOrBroadcast checks if an IPv4 address is the network or broadcast
// address of its block.
func isNetworkOrBroadcast(ip net.IP, network *net.IPNet) bool {
	if network == nil {
		return false
	}

	if ip.Equal(network.IP) {
		return true
	}

	if ip4 := ip.To4(); ip4 != nil {
		broadcast := make(net.IP, len(network.IP))
		copy(broadcast, network.IP)
		for i := range broadcast {
			broadcast[i] |= ^network.Mask[i]
		}
		return ip.Equal(broadcast)
	}

	return false
}
