package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEntryLocation(t *testing.T) {
	tests := []struct {
		name    string
		city    string
		country string
		want    string
	}{
		{"both", "Los Angeles", "US", "Los Angeles, US"},
		{"city only", "Singapore", "", "Singapore"},
		{"country only", "", "DE", "DE"},
		{"neither", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := Entry{City: tt.city, Country: tt.country}
			if got := entry.Location(); got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEntryMilliseconds(t *testing.T) {
	entry := Entry{RTT: 1500 * time.Microsecond}
	if got := entry.Milliseconds(); got != 1.5 {
		t.Errorf("Milliseconds() = %v, want 1.5", got)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.txt")
	entries := []Entry{
		{Rank: 1, Addr: "1.1.1.1", RTT: 12 * time.Millisecond, City: "Los Angeles", Country: "US"},
		{Rank: 2, Addr: "1.0.0.1", RTT: 48500 * time.Microsecond},
	}

	if err := Write(path, entries); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("report has %d lines, want 4", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Rank") || !strings.Contains(lines[0], "Latency (ms)") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[2], "1.1.1.1") || !strings.Contains(lines[2], "Los Angeles, US") || !strings.Contains(lines[2], "12.00") {
		t.Errorf("unexpected first row: %q", lines[2])
	}
	if !strings.Contains(lines[3], "1.0.0.1") || !strings.Contains(lines[3], "48.50") {
		t.Errorf("unexpected second row: %q", lines[3])
	}
}

func TestWriteChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latency.png")
	entries := []Entry{
		{Rank: 1, Addr: "1.1.1.1", RTT: 12 * time.Millisecond},
		{Rank: 2, Addr: "1.0.0.1", RTT: 30 * time.Millisecond},
		{Rank: 3, Addr: "1.1.1.2", RTT: 55 * time.Millisecond},
	}

	if err := WriteChart(path, entries); err != nil {
		t.Fatalf("WriteChart() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat chart: %v", err)
	}
	if info.Size() == 0 {
		t.Error("chart file is empty")
	}
}

func TestWriteChartEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latency.png")
	if err := WriteChart(path, nil); err == nil {
		t.Error("WriteChart() error = nil for empty entries")
	}
}
