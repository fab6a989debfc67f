package runner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/projectdiscovery/edgeping/pkg/report"
	"github.com/projectdiscovery/edgeping/pkg/scan"
)

// ANSI codes for in-place redraw of the live table
const (
	ansiCursorUp  = "\033[A"
	ansiClearLine = "\033[K"
)

const progressBarWidth = 40

// presenter renders the continuously refreshing top-N table. It only ever
// reads aggregator snapshots and progress counters, so it never blocks a
// probing worker.
type presenter struct {
	session     *scan.Session
	coordinator *scan.Coordinator
	options     *Options
	interval    time.Duration
	out         io.Writer
	lines       int
}

func newPresenter(session *scan.Session, coordinator *scan.Coordinator, options *Options) *presenter {
	return &presenter{
		session:     session,
		coordinator: coordinator,
		options:     options,
		interval:    time.Duration(options.RefreshInterval) * time.Millisecond,
		out:         os.Stdout,
	}
}

// Follow redraws the live view on a fixed interval until the scan finishes,
// then returns the coordinator's outcome.
func (p *presenter) Follow(done <-chan error) error {
	if p.options.NoRefresh || p.options.Silent {
		return <-done
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			p.render(p.liveEntries(), "")
			return err
		case <-ticker.C:
			p.render(p.liveEntries(), "")
		}
	}
}

// RenderFinal replaces the live view with the final annotated table.
func (p *presenter) RenderFinal(entries []report.Entry) {
	if p.options.Silent {
		// bare address/latency pairs for piping
		for _, entry := range entries {
			fmt.Fprintf(p.out, "%s %.2f\n", entry.Addr, entry.Milliseconds())
		}
		return
	}
	p.render(entries, au.Bold(au.Green("Scanning complete.")).String())
}

func (p *presenter) liveEntries() []report.Entry {
	snapshot := p.session.Aggregator.Snapshot(p.options.Limit)
	entries := make([]report.Entry, 0, len(snapshot))
	for i, ranked := range snapshot {
		entries = append(entries, report.Entry{Rank: i + 1, Addr: ranked.Addr, RTT: ranked.RTT})
	}
	return entries
}

func (p *presenter) render(entries []report.Entry, message string) {
	lines := make([]string, 0, len(entries)+4)
	lines = append(lines, au.Bold(fmt.Sprintf("%-6s%-18s%-30s%-12s", "Rank", "IP Address", "Location", "Latency (ms)")).String())
	lines = append(lines, strings.Repeat("-", 66))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("%-6d%-18s%-30s%s", entry.Rank, entry.Addr, entry.Location(), p.colorLatency(entry)))
	}
	lines = append(lines, "")
	if message == "" {
		message = p.progressLine()
	}
	lines = append(lines, message)

	for i := 0; i < p.lines; i++ {
		fmt.Fprint(p.out, ansiCursorUp, ansiClearLine)
	}
	for _, line := range lines {
		fmt.Fprintln(p.out, line)
	}
	p.lines = len(lines)
}

func (p *presenter) colorLatency(entry report.Entry) string {
	latency := fmt.Sprintf("%-12.2f", entry.Milliseconds())
	switch ms := entry.Milliseconds(); {
	case ms < 100:
		return au.Green(latency).String()
	case ms < 200:
		return au.Yellow(latency).String()
	default:
		return au.Red(latency).String()
	}
}

func (p *presenter) progressLine() string {
	done, total := p.coordinator.Progress()
	filled := 0
	if total > 0 {
		filled = int(done * progressBarWidth / total)
	}
	bar := fmt.Sprintf("[%s%s]", strings.Repeat("█", filled), strings.Repeat("-", progressBarWidth-filled))
	return fmt.Sprintf("%s %s %d/%d", au.Bold(au.Yellow("Scanning progress:")).String(), au.Green(bar).String(), done, total)
}
