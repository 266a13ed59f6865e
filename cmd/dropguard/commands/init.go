package commands

import (
	"github.com/spf13/cobra"

	"github.com/sud0woodo/DROPGUARD/cmd/dropguard/handlers"
	"github.com/sud0woodo/DROPGUARD/internal/config"
)

// Init returns the command for interactively creating a configuration file.
//
// This command guides users through the settings worth writing down for
// repeat runs and saves them as a YAML file the other commands pick up
// automatically.
//
// Flags:
//
//	--output, -o: Path to output file (default "dropguard.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a dropguard configuration",
		Long: `Interactively create a dropguard configuration file.

This command asks about the settings that rarely change between runs:

  - Datacenter region
  - Droplet size
  - WireGuard listen port
  - SSH private key path
  - Output file for the client configuration

The answers are saved as YAML. Command line flags still override the
file on any individual run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultPath, "Output file path")

	return cmd
}
