package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sud0woodo/DROPGUARD/internal/config"
	"github.com/sud0woodo/DROPGUARD/internal/digitalocean"
)

// Lister is the subset of the API client the list command uses.
type Lister interface {
	ListRegions(ctx context.Context) ([]digitalocean.Region, error)
	ListImages(ctx context.Context) ([]digitalocean.Image, digitalocean.Meta, error)
	ListKeys(ctx context.Context) ([]digitalocean.Key, error)
}

// newLister creates the API client for listings - replaced in tests.
var newLister = func(cfg *config.Config) Lister {
	if cfg.Endpoint != "" {
		return digitalocean.NewClientWithEndpoint(cfg.Token, cfg.Endpoint)
	}
	return digitalocean.NewClient(cfg.Token)
}

// List prints the account resources selected by the flags. With more than
// one selector set the first of regions, images, keys wins.
func List(ctx context.Context, configPath string, regions, images, keys bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := newLister(cfg)

	switch {
	case regions:
		return listRegions(ctx, client)
	case images:
		return listImages(ctx, client)
	case keys:
		return listKeys(ctx, client)
	default:
		return errors.New("pick one of --regions, --images or --keys, or use 'list --help'")
	}
}

// listRegions prints the available regions. Regions the account cannot
// deploy to are skipped.
func listRegions(ctx context.Context, client Lister) error {
	regions, err := client.ListRegions(ctx)
	if err != nil {
		return err
	}

	for _, region := range regions {
		if !region.Available {
			continue
		}

		log.Infof("> %s", region.Name)
		fmt.Printf("\tslug: %s\n", region.Slug)
		fmt.Printf("\tsizes: %s\n", strings.Join(region.Sizes, ", "))
		fmt.Printf("\tfeatures: %s\n", strings.Join(region.Features, ", "))
	}

	return nil
}

func listImages(ctx context.Context, client Lister) error {
	images, meta, err := client.ListImages(ctx)
	if err != nil {
		return err
	}

	log.Infof("%d images available", meta.Total)
	for _, image := range images {
		fmt.Printf("> %s\n", image.Distribution)
		fmt.Printf("\tid: %d\n", image.ID)
		fmt.Printf("\tname: %s\n", image.Name)
		fmt.Printf("\tslug: %s\n", image.Slug)
		fmt.Printf("\tmin_disk_size: %d\n", image.MinDiskSize)
		fmt.Printf("\tstatus: %s\n", image.Status)
	}

	return nil
}

func listKeys(ctx context.Context, client Lister) error {
	keys, err := client.ListKeys(ctx)
	if err != nil {
		return err
	}

	for _, key := range keys {
		log.Infof("> %s", key.Name)
		fmt.Printf("\tid: %d\n", key.ID)
		fmt.Printf("\tfingerprint: %s\n", key.Fingerprint)
		fmt.Printf("\tpublic_key: %s\n", key.PublicKey)
	}

	return nil
}
