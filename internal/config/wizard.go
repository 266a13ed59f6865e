package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"
)

var errInvalidPort = errors.New("port must be a number between 1 and 65535")

// WizardResult holds the answers collected by RunWizard.
type WizardResult struct {
	Region     string
	Size       string
	Port       string
	PrivateKey string
	Output     string
}

// RunWizard interactively collects the settings worth writing down for
// repeat runs. The context cancels the prompts.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		Region: DefaultRegion,
		Size:   DefaultSize,
		Port:   DefaultPort,
		Output: DefaultOutput,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Region").
				Description("Datacenter slug, see dropguard list --regions").
				Value(&result.Region),
			huh.NewSelect[string]().
				Title("Droplet Size").
				Description("The gateway needs very little").
				Options(
					huh.NewOption("s-1vcpu-512mb-10gb (smallest)", "s-1vcpu-512mb-10gb"),
					huh.NewOption("s-1vcpu-1gb", "s-1vcpu-1gb"),
				).
				Value(&result.Size),
			huh.NewInput().
				Title("WireGuard Port").
				Description("UDP port the gateway listens on").
				Value(&result.Port).
				Validate(validatePort),
			huh.NewInput().
				Title("SSH Private Key").
				Description("Path of the key matching one registered with DigitalOcean").
				Placeholder("~/.ssh/id_ed25519").
				Value(&result.PrivateKey),
			huh.NewInput().
				Title("Output File").
				Description("Where to save the generated client configuration").
				Value(&result.Output),
		).Title("dropguard defaults"),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// WriteFile renders the collected answers as a YAML config file that later
// runs pick up automatically.
func (r *WizardResult) WriteFile(path string) error {
	cfg := &Config{
		Region:     r.Region,
		Size:       r.Size,
		Port:       r.Port,
		PrivateKey: r.PrivateKey,
		Output:     r.Output,
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// validatePort accepts decimal port numbers.
func validatePort(s string) error {
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		return errInvalidPort
	}
	return nil
}
