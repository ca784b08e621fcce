package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Care booking system

Usage:
  calinga --mode=<service> [--config=<path>]

Modes:
  booking-service     booking lifecycle (create, accept, complete, cancel)
  caregiver-service   caregiver availability, location fixes, proximity matching
  admin-service       monitoring and oversight

Configuration is read from the environment, optionally seeded from a
YAML file passed with --config.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
