// Package config assembles the tool configuration from built-in defaults,
// an optional YAML file and the environment. Command-line flags override
// the result at the command layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file picked up from the working directory when
// --config is not given.
const DefaultPath = "dropguard.yaml"

// TokenEnvVar is the environment variable holding the DigitalOcean API
// token. The token never lives in the config file.
const TokenEnvVar = "DO_TOKEN"

// Defaults for a stock deployment. Any of them can be overridden in the
// config file or with flags.
const (
	DefaultRegion   = "fra1"
	DefaultSize     = "s-1vcpu-512mb-10gb"
	DefaultImage    = "debian-11-x64"
	DefaultPort     = "42069"
	DefaultOutput   = "dropguard.conf"
	DefaultUserData = "cloud_config.yml"
	DefaultSSHUser  = "root"

	DefaultDropletPollInterval = 5 * time.Second
	DefaultSetupPollInterval   = 10 * time.Second
)

// ErrMissingToken is returned by Validate when no API token is available.
var ErrMissingToken = errors.New("DO_TOKEN is not set: export your DigitalOcean API token (export DO_TOKEN=dop_v1_...)")

// Config holds everything one dropguard run needs.
type Config struct {
	// Token authenticates against the DigitalOcean API. It comes from the
	// DO_TOKEN environment variable only.
	Token string `yaml:"-"`

	// Endpoint overrides the API endpoint; empty selects the public API.
	Endpoint string `yaml:"endpoint,omitempty"`

	Region string `yaml:"region,omitempty"`
	Size   string `yaml:"size,omitempty"`
	Image  string `yaml:"image,omitempty"`
	Port   string `yaml:"port,omitempty"`

	// Output is the local path the WireGuard client configuration is
	// saved to.
	Output string `yaml:"output,omitempty"`

	// UserData is the path of the cloud-init template.
	UserData string `yaml:"user_data,omitempty"`

	// PrivateKey is the path of the SSH private key used to reach the
	// droplet. The matching public key must be registered with the account.
	PrivateKey string `yaml:"private_key,omitempty"`

	// SSHUser is the login identity on the droplet.
	SSHUser string `yaml:"ssh_user,omitempty"`

	// DropletPollInterval is the pause between droplet status checks.
	DropletPollInterval time.Duration `yaml:"-"`

	// SetupPollInterval is the pause between cloud-init probes.
	SetupPollInterval time.Duration `yaml:"-"`

	// Timeout bounds the whole wait for the gateway; 0 waits forever.
	Timeout time.Duration `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Region:              DefaultRegion,
		Size:                DefaultSize,
		Image:               DefaultImage,
		Port:                DefaultPort,
		Output:              DefaultOutput,
		UserData:            DefaultUserData,
		SSHUser:             DefaultSSHUser,
		DropletPollInterval: DefaultDropletPollInterval,
		SetupPollInterval:   DefaultSetupPollInterval,
	}
}

// Load builds the configuration: built-in defaults, overlaid with the YAML
// file at path when one exists, then the token from the environment. A
// missing file is only an error when the operator named it explicitly;
// the auto-detected default path may simply not be there.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg.Token = os.Getenv(TokenEnvVar)

	return cfg, nil
}

// Validate checks the parts every command depends on.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.DropletPollInterval <= 0 || c.SetupPollInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}
