package commands

import (
	"github.com/spf13/cobra"

	"github.com/sud0woodo/DROPGUARD/cmd/dropguard/handlers"
)

// List returns the command for listing account resources.
//
// Exactly one of the selector flags picks what to list:
//
//	--regions: Datacenter regions droplets can be created in
//	--images: Operating system images
//	--keys: SSH keys registered with the account
//
// Environment variables:
//
//	DO_TOKEN: DigitalOcean API token (required)
func List() *cobra.Command {
	var (
		regions bool
		images  bool
		keys    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List regions, images or SSH keys available to the account",
		Long: `List resources available to the DigitalOcean account.

The regions and sizes shown here are the values the create command
accepts, and the SSH key IDs are what --ssh-keys expects.

Examples:
  # List the datacenter regions droplets can be created in
  dropguard list --regions

  # List the available operating system images
  dropguard list --images

  # List the SSH keys registered with the account
  dropguard list --keys`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.List(cmd.Context(), configPath, regions, images, keys)
		},
	}

	cmd.Flags().BoolVar(&regions, "regions", false, "List available regions")
	cmd.Flags().BoolVar(&images, "images", false, "List available images")
	cmd.Flags().BoolVar(&keys, "keys", false, "List available SSH keys")

	return cmd
}
