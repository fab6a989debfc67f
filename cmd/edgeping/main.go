package main

import (
	"github.com/projectdiscovery/edgeping/internal/runner"
	"github.com/projectdiscovery/gologger"
)

func main() {
	options := runner.ParseOptions()

	edgepingRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}
	defer edgepingRunner.Close()

	if err := edgepingRunner.Run(); err != nil {
		gologger.Fatal().Msgf("Could not run scan: %s\n", err)
	}
}
