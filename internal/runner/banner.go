package runner

import "github.com/projectdiscovery/gologger"

var banner = `
           __                _
  ___  ____/ /___ ____  ___  (_)__  ___ _
 / -_)/ _  / _  // -_)/ _ \/ / _ \/ _  /
 \__/ \_,_/\_, / \__/ / .__/_/_//_/\_, /
          /___/      /_/          /___/
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\tprojectdiscovery.io\n\n")
}
