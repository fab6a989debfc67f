package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/projectdiscovery/edgeping/pkg/geo"
	"github.com/projectdiscovery/edgeping/pkg/probe"
	"github.com/projectdiscovery/edgeping/pkg/ranges"
	"github.com/projectdiscovery/edgeping/pkg/report"
	"github.com/projectdiscovery/edgeping/pkg/sampler"
	"github.com/projectdiscovery/edgeping/pkg/scan"
	"github.com/projectdiscovery/edgeping/pkg/store"
	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"
	fileutil "github.com/projectdiscovery/utils/file"
	syncutil "github.com/projectdiscovery/utils/sync"
	"github.com/shirou/gopsutil/v3/host"
)

const geoConcurrency = 5

// Runner contains the internal logic of the program
type Runner struct {
	options     *Options
	session     *scan.Session
	coordinator *scan.Coordinator
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	cfg := scan.Config{
		Limit:       options.Limit,
		MaxLatency:  time.Duration(options.MaxLatency) * time.Millisecond,
		Concurrency: options.Concurrency,
		Timeout:     time.Duration(options.Timeout) * time.Millisecond,
	}
	return &Runner{options: options, session: scan.NewSession(cfg)}, nil
}

// Run executes one full scan: load ranges, sample candidates, probe them
// concurrently while the live table refreshes, then enrich and report the
// final ranked list. Per-candidate failures never surface here; only
// whole-scan setup failures are returned.
func (r *Runner) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gologger.Verbose().Msgf("running on %s", platformString())

	text, err := r.loadRangeText(ctx)
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("could not load provider ranges")
	}
	subnets, err := ranges.Parse(text)
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("could not parse provider ranges")
	}
	gologger.Info().Msgf("loaded %d ranges", len(subnets))

	candidates := sampler.New(sampler.WithSampleSize(r.options.SampleSize)).Sample(subnets)
	if len(candidates) == 0 {
		return errorutil.New("no candidate addresses after sampling")
	}
	gologger.Info().Msgf("probing %d candidate addresses (session %s)", len(candidates), r.session.ID)

	prober, err := r.buildProber()
	if err != nil {
		return err
	}
	r.coordinator = scan.NewCoordinator(prober, r.session.Aggregator, r.options.Concurrency)

	scanDone := make(chan error, 1)
	go func() {
		scanDone <- r.coordinator.Run(ctx, candidates)
	}()

	presenter := newPresenter(r.session, r.coordinator, r.options)
	scanErr := presenter.Follow(scanDone)
	if scanErr != nil && !errors.Is(scanErr, context.Canceled) {
		return scanErr
	}
	if errors.Is(scanErr, context.Canceled) {
		gologger.Warning().Msgf("scan interrupted, reporting partial results")
	}

	entries := r.finalEntries()
	if !r.options.NoGeo && len(entries) > 0 {
		r.enrichLocations(context.Background(), entries)
	}
	presenter.RenderFinal(entries)

	r.writeOutputs(entries)
	return nil
}

// Close the runner instance
func (r *Runner) Close() {}

func (r *Runner) loadRangeText(ctx context.Context) (string, error) {
	if r.options.IPList != "" {
		if !fileutil.FileExists(r.options.IPList) {
			return "", fmt.Errorf("range file %s does not exist", r.options.IPList)
		}
		gologger.Info().Msgf("loading ranges from %s", r.options.IPList)
		data, err := os.ReadFile(r.options.IPList)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	gologger.Info().Msgf("fetching published ranges from %s", ranges.DefaultAPIURL)
	return ranges.NewClient().Fetch(ctx)
}

func (r *Runner) buildProber() (probe.Prober, error) {
	timeout := time.Duration(r.options.Timeout) * time.Millisecond
	switch r.options.ProbeMode {
	case "icmp":
		return probe.NewICMPProber(timeout), nil
	case "tcp":
		return probe.NewTCPProber(r.options.Port, timeout, r.options.Attempts), nil
	}
	return nil, fmt.Errorf("unknown probe mode %q", r.options.ProbeMode)
}

// finalEntries converts the aggregator's top-N snapshot into report rows.
func (r *Runner) finalEntries() []report.Entry {
	snapshot := r.session.Aggregator.Snapshot(r.options.Limit)
	entries := make([]report.Entry, 0, len(snapshot))
	for i, ranked := range snapshot {
		entries = append(entries, report.Entry{
			Rank: i + 1,
			Addr: ranked.Addr,
			RTT:  ranked.RTT,
		})
	}
	return entries
}

// enrichLocations annotates the final entries with city/country, a few
// lookups at a time. A failed lookup leaves the fields blank and never drops
// the entry.
func (r *Runner) enrichLocations(ctx context.Context, entries []report.Entry) {
	gologger.Info().Msgf("resolving locations for %d addresses", len(entries))

	client := geo.NewClient()
	awg, err := syncutil.New(syncutil.WithSize(geoConcurrency))
	if err != nil {
		gologger.Warning().Msgf("could not start location lookups: %v", err)
		return
	}
	for i := range entries {
		awg.Add()
		go func(entry *report.Entry) {
			defer awg.Done()
			location, err := client.Lookup(ctx, entry.Addr)
			if err != nil {
				gologger.Verbose().Msgf("location lookup failed for %s: %v", entry.Addr, err)
				return
			}
			entry.City = location.City
			entry.Country = location.Country
		}(&entries[i])
	}
	awg.Wait()
}

// writeOutputs saves the final ranked list to every requested sink. Output
// failures are reported but do not fail a completed scan.
func (r *Runner) writeOutputs(entries []report.Entry) {
	if r.options.Output != "" {
		if err := report.Write(r.options.Output, entries); err != nil {
			gologger.Error().Msgf("could not save report to %s: %v", r.options.Output, err)
		} else {
			gologger.Info().Msgf("results saved to %s", r.options.Output)
		}
	}

	if r.options.Chart != "" {
		if err := report.WriteChart(r.options.Chart, entries); err != nil {
			gologger.Error().Msgf("could not render chart to %s: %v", r.options.Chart, err)
		} else {
			gologger.Info().Msgf("chart saved to %s", r.options.Chart)
		}
	}

	if r.options.Database != "" {
		r.persistSession(entries)
	}
}

func (r *Runner) persistSession(entries []report.Entry) {
	db, err := store.Open(r.options.Database)
	if err != nil {
		gologger.Error().Msgf("could not open results database: %v", err)
		return
	}
	defer db.Close()

	done, total := r.coordinator.Progress()
	info := store.SessionInfo{
		ID:         r.session.ID,
		StartedAt:  r.session.StartedAt,
		FinishedAt: time.Now(),
		Platform:   platformString(),
		Candidates: int(total),
		Probed:     int(done),
	}
	if err := db.SaveSession(info, entries); err != nil {
		gologger.Error().Msgf("could not persist session: %v", err)
		return
	}
	gologger.Info().Msgf("session %s persisted to %s", r.session.ID, r.options.Database)
}

func platformString() string {
	info, err := host.Info()
	if err != nil {
		return runtime.GOOS
	}
	return fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
}
