package report

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"
)

// WriteChart renders the ranked latencies as a PNG bar chart.
func WriteChart(path string, entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no entries to chart")
	}

	bars := make([]chart.Value, 0, len(entries))
	for _, entry := range entries {
		bars = append(bars, chart.Value{Label: entry.Addr, Value: entry.Milliseconds()})
	}

	graph := chart.BarChart{
		Title: "Lowest-latency addresses",
		TitleStyle: chart.Style{
			FontSize: 14,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:    1200,
		Height:   400,
		BarWidth: 40,
		XAxis: chart.Style{
			FontSize: 8,
		},
		YAxis: chart.YAxis{
			Name: "Latency (ms)",
			NameStyle: chart.Style{
				FontSize: 12,
			},
		},
		Bars: bars,
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return graph.Render(chart.PNG, f)
}
