// Package scan runs bounded concurrent latency probes over a candidate set
// and aggregates the streaming results into a stable ranked view.
//
// The Coordinator is the only place true parallelism occurs: a fixed-width
// worker pool dispatches one probe per candidate and fans every completed
// result into the Aggregator, a mutex-guarded collection ordered by ascending
// latency. Readers take consistent top-N snapshots at any time without
// blocking the probing workers for longer than the copy.
package scan
