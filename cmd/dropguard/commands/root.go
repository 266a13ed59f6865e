// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Flags shared by every subcommand.
var (
	configPath string
	verbose    bool
	quiet      bool
)

var defaultLogFormatter = &log.TextFormatter{}

// infoFormatter overrides the default format for Info() log events to
// provide an easier to read output.
type infoFormatter struct{}

func (f *infoFormatter) Format(entry *log.Entry) ([]byte, error) {
	if entry.Level == log.InfoLevel {
		return append([]byte(entry.Message), '\n'), nil
	}
	return defaultLogFormatter.Format(entry)
}

// Root returns the root command for the dropguard CLI.
//
// The root command serves as the entry point and parent for all subcommands.
// It provides basic CLI metadata, the global flags and organizes the command
// hierarchy.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dropguard",
		Short: "Provision WireGuard VPN gateways on DigitalOcean",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogging()
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: dropguard.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose execution")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet execution")

	cmd.AddCommand(Init())
	cmd.AddCommand(Create())
	cmd.AddCommand(List())
	cmd.AddCommand(Version())

	return cmd
}

// setupLogging configures the global logger from the --verbose and --quiet
// flags. Info events print as bare messages so regular output stays clean;
// verbose mode switches back to the standard formatter.
func setupLogging() error {
	log.SetFormatter(new(infoFormatter))
	log.SetLevel(log.InfoLevel)

	if quiet && verbose {
		return errors.New("cannot use --quiet and --verbose at the same time")
	}
	if quiet {
		log.SetLevel(log.ErrorLevel)
	}
	if verbose {
		// Switch back to the standard formatter
		log.SetFormatter(defaultLogFormatter)
		log.SetLevel(log.DebugLevel)
	}

	return nil
}
