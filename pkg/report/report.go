package report

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Entry is one row of the final ranked report.
type Entry struct {
	Rank    int
	Addr    string
	RTT     time.Duration
	City    string
	Country string
}

// Milliseconds returns the latency as fractional milliseconds.
func (e Entry) Milliseconds() float64 {
	return float64(e.RTT) / float64(time.Millisecond)
}

// Location formats the city/country pair for display. Unresolved fields stay
// blank.
func (e Entry) Location() string {
	switch {
	case e.City == "" && e.Country == "":
		return ""
	case e.City == "":
		return e.Country
	case e.Country == "":
		return e.City
	}
	return e.City + ", " + e.Country
}

// Write saves the ranked report as an aligned text table. Row order follows
// the entries slice, which callers take from an aggregator snapshot.
func Write(path string, entries []Entry) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-6s%-18s%-30s%-12s\n", "Rank", "IP Address", "Location", "Latency (ms)"))
	sb.WriteString(strings.Repeat("-", 66) + "\n")
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("%-6d%-18s%-30s%-12.2f\n", entry.Rank, entry.Addr, entry.Location(), entry.Milliseconds()))
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}
