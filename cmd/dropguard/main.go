// Package main is the entry point for the dropguard CLI.
//
// dropguard is a command-line tool for provisioning disposable WireGuard
// VPN gateways on DigitalOcean droplets. It creates a droplet with a
// cloud-init script that sets up WireGuard, waits for the setup to finish
// and downloads the generated client configuration.
//
// Commands: init, create, list, version.
//
// For detailed usage information, run:
//
//	dropguard --help
package main

import (
	"fmt"
	"os"

	"github.com/sud0woodo/DROPGUARD/cmd/dropguard/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
