package scan

import (
	"context"
	"sync/atomic"

	"github.com/projectdiscovery/edgeping/pkg/probe"
	"github.com/projectdiscovery/edgeping/pkg/sampler"
	"github.com/projectdiscovery/gologger"
	syncutil "github.com/projectdiscovery/utils/sync"
)

// DefaultConcurrency is the default number of probes in flight. High enough
// for throughput over large candidate sets without exhausting the local
// socket table.
const DefaultConcurrency = 50

// Coordinator fans the candidate set out over a bounded pool of probe
// workers and feeds every completed result into the aggregator. Each
// candidate produces exactly one result; there are no retries.
type Coordinator struct {
	prober      probe.Prober
	agg         *Aggregator
	concurrency int

	done  int64
	total int64
}

// NewCoordinator wires a prober to an aggregator with the given pool width.
func NewCoordinator(prober probe.Prober, agg *Aggregator, concurrency int) *Coordinator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Coordinator{prober: prober, agg: agg, concurrency: concurrency}
}

// Progress reports how many candidates have produced a result so far and how
// many were dispatched in total.
func (c *Coordinator) Progress() (done, total int64) {
	return atomic.LoadInt64(&c.done), atomic.LoadInt64(&c.total)
}

// Run probes every candidate in dispatch order with at most the configured
// number of probes in flight; completion order is unconstrained. Cancelling
// the context stops new dispatches, while in-flight probes finish or time
// out on their own before Run returns.
func (c *Coordinator) Run(ctx context.Context, candidates []sampler.Candidate) error {
	atomic.StoreInt64(&c.total, int64(len(candidates)))

	awg, err := syncutil.New(syncutil.WithSize(c.concurrency))
	if err != nil {
		return err
	}

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			awg.Wait()
			return ctx.Err()
		default:
		}

		awg.Add()
		go func(candidate sampler.Candidate) {
			defer awg.Done()

			result := c.prober.Probe(ctx, candidate.Addr)
			atomic.AddInt64(&c.done, 1)
			if !result.Success {
				gologger.Debug().Msgf("probe %s (%s) failed: %s", candidate.Addr, candidate.Subnet, result.Kind)
				return
			}
			c.agg.Insert(result.Addr, result.RTT)
		}(candidate)
	}

	awg.Wait()
	return nil
}
