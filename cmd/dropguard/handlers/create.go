// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/sud0woodo/DROPGUARD/internal/cloudinit"
	"github.com/sud0woodo/DROPGUARD/internal/config"
	"github.com/sud0woodo/DROPGUARD/internal/digitalocean"
	"github.com/sud0woodo/DROPGUARD/internal/provision"
)

// CreateOptions carries the create command flags. Empty string fields mean
// the flag was not given and the config file or built-in default applies.
type CreateOptions struct {
	ConfigPath string

	Name       string
	Region     string
	Size       string
	Image      string
	SSHKeys    []string
	PrivateKey string
	Port       string
	Output     string
	UserData   string
	Timeout    time.Duration
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newAPIClient creates the DigitalOcean API client.
	newAPIClient = func(cfg *config.Config) provision.DropletAPI {
		if cfg.Endpoint != "" {
			return digitalocean.NewClientWithEndpoint(cfg.Token, cfg.Endpoint)
		}
		return digitalocean.NewClient(cfg.Token)
	}

	// newSetupWatcher creates the cloud-init watcher.
	newSetupWatcher = func(wcfg *cloudinit.Config) (provision.SetupWatcher, error) {
		return cloudinit.NewWatcher(wcfg)
	}

	// loadConfigFile loads config from file (for testing injection).
	loadConfigFile = config.Load

	// readPassword reads a passphrase from the terminal without echo.
	readPassword = term.ReadPassword

	// stdinIsTerminal reports whether stdin is attached to a terminal.
	stdinIsTerminal = func() bool { return isatty.IsTerminal(os.Stdin.Fd()) }
)

// Create provisions a new droplet and sets it up as a WireGuard gateway.
//
// This function orchestrates the complete gateway workflow:
//  1. Loads the configuration file and overlays the command line flags
//  2. Loads the SSH private key, prompting for a passphrase when needed
//  3. Creates the droplet with the rendered cloud-init user data
//  4. Polls the API until the droplet reports an active status
//  5. Follows the cloud-init run over SSH until it finished
//  6. Downloads the generated WireGuard client configuration
//
// The function expects DO_TOKEN to be set in the environment.
func Create(ctx context.Context, opts *CreateOptions) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	signer, err := loadSigner(cfg.PrivateKey)
	if err != nil {
		return err
	}

	watcher, err := newSetupWatcher(&cloudinit.Config{
		Signer:       signer,
		User:         cfg.SSHUser,
		OutputPath:   cfg.Output,
		PollInterval: cfg.SetupPollInterval,
	})
	if err != nil {
		return err
	}

	prov := provision.NewProvisioner(newAPIClient(cfg), watcher, &provision.Config{
		Image:        cfg.Image,
		UserDataPath: cfg.UserData,
		PollInterval: cfg.DropletPollInterval,
		Timeout:      cfg.Timeout,
	})

	log.Info("creating droplet")
	return prov.Provision(ctx, provision.Request{
		Name:    opts.Name,
		Region:  cfg.Region,
		Size:    cfg.Size,
		SSHKeys: opts.SSHKeys,
		Port:    cfg.Port,
	})
}

// loadConfig reads the config file honoring the global --config semantics:
// an explicitly named file must exist, the default path may be absent.
func loadConfig(configPath string) (*config.Config, error) {
	explicit := configPath != ""
	path := configPath
	if !explicit {
		path = config.DefaultPath
	}
	return loadConfigFile(path, explicit)
}

// resolveConfig merges built-in defaults, the config file and the command
// line flags. Flags win over the file, the file wins over defaults.
func resolveConfig(opts *CreateOptions) (*config.Config, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.Region != "" {
		cfg.Region = opts.Region
	}
	if opts.Size != "" {
		cfg.Size = opts.Size
	}
	if opts.Image != "" {
		cfg.Image = opts.Image
	}
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}
	if opts.UserData != "" {
		cfg.UserData = opts.UserData
	}
	if opts.PrivateKey != "" {
		cfg.PrivateKey = opts.PrivateKey
	}
	if opts.Timeout != 0 {
		cfg.Timeout = opts.Timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.PrivateKey == "" {
		return nil, errors.New("no private key: pass --private-key or set private_key in the config file")
	}

	return cfg, nil
}

// loadSigner reads and parses the SSH private key. Keys protected with a
// passphrase trigger an interactive prompt when stdin is a terminal.
func loadSigner(path string) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err == nil {
		return signer, nil
	}

	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return nil, fmt.Errorf("parse private key %s: %w", path, err)
	}
	if !stdinIsTerminal() {
		return nil, fmt.Errorf("private key %s requires a passphrase and stdin is not a terminal", path)
	}

	fmt.Fprintf(os.Stderr, "Enter passphrase for %s: ", path)
	passphrase, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}

	signer, err = ssh.ParsePrivateKeyWithPassphrase(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("decrypt private key %s: %w", path, err)
	}

	return signer, nil
}
