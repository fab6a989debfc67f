package runner

import (
	"fmt"
	"os"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/edgeping/pkg/probe"
	"github.com/projectdiscovery/edgeping/pkg/sampler"
	"github.com/projectdiscovery/edgeping/pkg/scan"
	"github.com/projectdiscovery/edgeping/pkg/version"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
)

var au *aurora.Aurora

// Options contains the configuration options for one scan run.
type Options struct {
	IPList string

	Limit       int
	MaxLatency  int // milliseconds, zero disables the ceiling
	Concurrency int
	Timeout     int // milliseconds per probe attempt
	Port        int
	Attempts    int
	SampleSize  int
	ProbeMode   string

	Output          string
	Database        string
	Chart           string
	NoRefresh       bool
	RefreshInterval int // milliseconds

	NoGeo bool

	Verbose bool
	Silent  bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`edgeping discovers the lowest-latency addresses across a provider's published IP ranges`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.IPList, "ip-list", "il", "", "load CIDR ranges from a local file instead of the ranges api"),
	)

	flagSet.CreateGroup("scan", "Scan",
		flagSet.IntVarP(&options.Limit, "limit", "l", 20, "number of lowest-latency addresses to keep"),
		flagSet.IntVarP(&options.MaxLatency, "max-latency", "ml", 0, "drop results above this latency in milliseconds"),
		flagSet.IntVar(&options.Concurrency, "c", scan.DefaultConcurrency, "number of concurrent probes"),
		flagSet.IntVar(&options.Timeout, "timeout", 1000, "probe timeout in milliseconds"),
		flagSet.IntVarP(&options.Port, "port", "p", probe.DefaultPort, "port used by the tcp prober"),
		flagSet.IntVarP(&options.Attempts, "attempts", "a", probe.DefaultAttempts, "probe attempts averaged per address"),
		flagSet.IntVarP(&options.SampleSize, "sample-size", "ss", sampler.DefaultSampleSize, "addresses sampled from blocks larger than /24"),
		flagSet.StringVarP(&options.ProbeMode, "probe", "pm", "tcp", "probe mode (tcp, icmp)"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "out", "o", "", "save the final ranked report to a file"),
		flagSet.StringVar(&options.Database, "db", "", "persist session results to a sqlite database"),
		flagSet.StringVar(&options.Chart, "chart", "", "render the final latencies as a png bar chart"),
		flagSet.BoolVarP(&options.NoRefresh, "no-refresh", "nr", false, "disable the live table, print the final table only"),
		flagSet.IntVarP(&options.RefreshInterval, "refresh-interval", "ri", 500, "live table refresh interval in milliseconds"),
	)

	flagSet.CreateGroup("geo", "Geolocation",
		flagSet.BoolVarP(&options.NoGeo, "no-geo", "ng", false, "skip geolocation lookups for the final addresses"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only the final results"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	au = aurora.New(aurora.WithColors(true))

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.Version)
		os.Exit(0)
	}

	if err := options.validate(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	return options
}

func (options *Options) validate() error {
	if options.Limit <= 0 {
		return fmt.Errorf("limit must be a positive integer")
	}
	if options.MaxLatency < 0 {
		return fmt.Errorf("max-latency cannot be negative")
	}
	if options.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be a positive integer")
	}
	if options.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive integer")
	}
	if options.SampleSize <= 0 {
		return fmt.Errorf("sample-size must be a positive integer")
	}
	if options.RefreshInterval <= 0 {
		return fmt.Errorf("refresh-interval must be a positive integer")
	}
	if options.ProbeMode != "tcp" && options.ProbeMode != "icmp" {
		return fmt.Errorf("unknown probe mode %q (expected tcp or icmp)", options.ProbeMode)
	}
	return nil
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	// If the user desires verbose output, show verbose output
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		au = aurora.New(aurora.WithColors(false))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}
