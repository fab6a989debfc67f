// Package sampler turns published CIDR blocks into a bounded candidate set of
// probe targets.
//
// Blocks of /24 or smaller are enumerated fully (network and broadcast
// addresses excluded). Larger blocks are sampled uniformly at random without
// replacement up to a fixed cap, so that scan time stays bounded regardless
// of how large the published ranges are.
//
// Example:
//
//	s := sampler.New(sampler.WithSampleSize(256))
//	candidates := s.Sample(subnets)
//
// The random source can be injected with WithRandSource for reproducible
// candidate sets.
package sampler
