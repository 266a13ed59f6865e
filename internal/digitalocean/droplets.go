package digitalocean

import (
	"context"
	"fmt"
)

const dropletsPath = "/v2/droplets"

// CreateDroplet creates a droplet. The API answers 202 with its initial view
// of the instance, normally still in status "new"; poll GetDroplet until it
// turns active. The returned droplet is nil when the provider accepted the
// request but sent no droplet document back.
func (c *Client) CreateDroplet(ctx context.Context, create *DropletCreateRequest) (*Droplet, error) {
	req, err := c.newRequest(ctx, dropletsPath, create)
	if err != nil {
		return nil, err
	}

	var root dropletRoot
	if err := c.do(req, &root); err != nil {
		return nil, err
	}

	return root.Droplet, nil
}

// GetDroplet fetches a single droplet by id.
func (c *Client) GetDroplet(ctx context.Context, id int) (*Droplet, error) {
	req, err := c.newRequest(ctx, fmt.Sprintf("%s/%d", dropletsPath, id), nil)
	if err != nil {
		return nil, err
	}

	var root dropletRoot
	if err := c.do(req, &root); err != nil {
		return nil, err
	}

	return root.Droplet, nil
}
