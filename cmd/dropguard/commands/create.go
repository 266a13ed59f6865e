package commands

import (
	"github.com/spf13/cobra"

	"github.com/sud0woodo/DROPGUARD/cmd/dropguard/handlers"
)

// Create returns the command for provisioning a WireGuard gateway droplet.
//
// The command creates the droplet with a rendered cloud-init script, waits
// until the droplet is active, follows the cloud-init run over SSH and
// downloads the generated WireGuard client configuration.
//
// Required flags:
//
//	--name, -n: Droplet name
//	--ssh-keys, -k: SSH key IDs or fingerprints from the account store
//
// Environment variables:
//
//	DO_TOKEN: DigitalOcean API token (required)
func Create() *cobra.Command {
	var opts handlers.CreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a droplet and set it up as a WireGuard gateway",
		Long: `Create a droplet and configure it as a WireGuard VPN gateway.

The droplet boots with a cloud-init script that installs WireGuard and
generates a client configuration. dropguard waits for the droplet to
become active, follows the cloud-init run over SSH and downloads the
generated client configuration when the setup is finished.

The DigitalOcean API token is read from the DO_TOKEN environment
variable. Defaults for most flags can be set in dropguard.yaml, see
'dropguard init'.

Examples:
  # Create a gateway using SSH key 123456 from the account store
  dropguard create -n vpn -k 123456 --private-key ~/.ssh/dropguard

  # Pick a region and a custom WireGuard port
  dropguard create -n vpn -k 123456 --private-key ~/.ssh/dropguard -r ams3 -p 51820

  # Give up when the gateway is not ready within ten minutes
  dropguard create -n vpn -k 123456 --private-key ~/.ssh/dropguard --timeout 10m`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ConfigPath = configPath
			return handlers.Create(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "Droplet name")
	cmd.Flags().StringSliceVarP(&opts.SSHKeys, "ssh-keys", "k", nil, "SSH key IDs or fingerprints present in the DigitalOcean account store")
	cmd.Flags().StringVar(&opts.PrivateKey, "private-key", "", "SSH private key to use when authenticating to the droplet")
	cmd.Flags().StringVarP(&opts.Region, "region", "r", "", "Region to create the droplet in (default: fra1)")
	cmd.Flags().StringVarP(&opts.Size, "size", "s", "", "Size of the droplet to create (default: s-1vcpu-512mb-10gb)")
	cmd.Flags().StringVar(&opts.Image, "image", "", "Image to create the droplet from (default: debian-11-x64)")
	cmd.Flags().StringVarP(&opts.Port, "port", "p", "", "Port to use for WireGuard (default: 42069)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Filename to save the WireGuard config to (default: dropguard.conf)")
	cmd.Flags().StringVar(&opts.UserData, "user-data", "", "Cloud-init template rendered into the droplet user data (default: cloud_config.yml)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Abort when the gateway is not ready in time (0 waits forever)")

	// MarkFlagRequired cannot fail for flags defined on the same command
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("ssh-keys")

	return cmd
}
