// Package provision drives gateway provisioning end to end: create the
// droplet, poll until the instance is active, then hand its public address
// to the setup watcher that delivers the WireGuard client configuration.
package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sud0woodo/DROPGUARD/internal/cloudinit"
	"github.com/sud0woodo/DROPGUARD/internal/digitalocean"
	"github.com/sud0woodo/DROPGUARD/internal/retry"
)

const (
	defaultImage        = "debian-11-x64"
	defaultTag          = "DROPGUARD"
	defaultUserDataPath = "cloud_config.yml"
	defaultPollInterval = 5 * time.Second
)

// ErrNoDropletID means the provider accepted the create call but the
// response carried no droplet to poll. Without an id there is nothing to
// wait for, so provisioning stops before the first status check.
var ErrNoDropletID = errors.New("create response carried no droplet id")

// ErrNoPublicAddress means the droplet reported active without a public
// interface to reach it on.
var ErrNoPublicAddress = errors.New("active droplet has no public address")

// DropletAPI is the subset of the provider client the provisioner uses.
type DropletAPI interface {
	CreateDroplet(ctx context.Context, create *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error)
	GetDroplet(ctx context.Context, id int) (*digitalocean.Droplet, error)
}

// SetupWatcher waits for the droplet's first-boot setup to finish and
// stores the resulting client configuration locally.
type SetupWatcher interface {
	Watch(ctx context.Context, addr string) error
}

// Config holds the provisioner's fixed settings; the per-droplet input
// arrives with each Request.
type Config struct {
	// Image is the OS image slug for new droplets. Defaults to debian-11-x64.
	Image string

	// Tag is attached to every droplet this tool creates so they are easy
	// to find in the control panel. Defaults to DROPGUARD.
	Tag string

	// UserDataPath is the local cloud-init template. Defaults to
	// cloud_config.yml in the working directory.
	UserDataPath string

	// PollInterval is the pause between droplet status checks. Defaults to 5s.
	PollInterval time.Duration

	// Timeout bounds the wait for the gateway to come up, covering both the
	// status polling and the cloud-init watch. 0 waits forever.
	Timeout time.Duration
}

// Request describes the droplet to create.
type Request struct {
	Name    string
	Region  string
	Size    string
	SSHKeys []string

	// Port is the WireGuard listen port substituted into the user data.
	Port string
}

// Provisioner runs the provisioning flow against a provider API and a setup
// watcher.
type Provisioner struct {
	api     DropletAPI
	watcher SetupWatcher
	config  *Config
}

// NewProvisioner creates a provisioner. The config is copied and missing
// fields are filled with defaults; cfg may be nil to take all defaults.
func NewProvisioner(api DropletAPI, watcher SetupWatcher, cfg *Config) *Provisioner {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.Image == "" {
		c.Image = defaultImage
	}
	if c.Tag == "" {
		c.Tag = defaultTag
	}
	if c.UserDataPath == "" {
		c.UserDataPath = defaultUserDataPath
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}

	return &Provisioner{api: api, watcher: watcher, config: &c}
}

// Provision creates the droplet and sees it through to a downloaded
// WireGuard client configuration. Errors reported by the provider are
// returned exactly as the API client produced them.
func (p *Provisioner) Provision(ctx context.Context, req Request) error {
	log.Info("setting cloud_config.yml")
	userData, err := cloudinit.RenderUserData(p.config.UserDataPath, req.Port)
	if err != nil {
		return err
	}

	droplet, err := p.api.CreateDroplet(ctx, &digitalocean.DropletCreateRequest{
		Name:     req.Name,
		Region:   req.Region,
		Size:     req.Size,
		Image:    p.config.Image,
		SSHKeys:  req.SSHKeys,
		Tags:     []string{p.config.Tag},
		UserData: userData,
	})
	if err != nil {
		return err
	}
	if droplet == nil || droplet.ID == 0 {
		return ErrNoDropletID
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	log.Info("waiting for droplet to become active")
	addr, err := p.waitForActive(ctx, droplet.ID)
	if err != nil {
		return err
	}
	log.Infof("droplet is active: %s", addr)

	log.Info("checking cloud-config status")
	return p.watcher.Watch(ctx, addr)
}

// waitForActive polls the droplet until it reports active and returns its
// public address. Provider errors stop the wait immediately; a droplet that
// is merely not active yet keeps it going.
func (p *Provisioner) waitForActive(ctx context.Context, id int) (string, error) {
	var addr string

	err := retry.Forever(ctx, p.config.PollInterval, func() error {
		droplet, err := p.api.GetDroplet(ctx, id)
		if err != nil {
			return retry.Fatal(err)
		}
		if droplet == nil {
			return retry.Fatal(fmt.Errorf("droplet %d missing from status response", id))
		}
		if droplet.Status != digitalocean.StatusActive {
			return fmt.Errorf("droplet status %q", droplet.Status)
		}

		a, ok := droplet.PublicAddress()
		if !ok {
			return retry.Fatal(ErrNoPublicAddress)
		}
		addr = a
		return nil
	})

	return addr, err
}
