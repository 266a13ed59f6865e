package digitalocean

import "context"

// ListRegions returns all datacenter regions, including unavailable ones;
// callers filter on Region.Available.
func (c *Client) ListRegions(ctx context.Context) ([]Region, error) {
	req, err := c.newRequest(ctx, "/v2/regions", nil)
	if err != nil {
		return nil, err
	}

	var root regionsRoot
	if err := c.do(req, &root); err != nil {
		return nil, err
	}

	return root.Regions, nil
}

// ListImages returns the available droplet images along with the listing
// metadata, whose Total counts all images known to the API.
func (c *Client) ListImages(ctx context.Context) ([]Image, Meta, error) {
	req, err := c.newRequest(ctx, "/v2/images", nil)
	if err != nil {
		return nil, Meta{}, err
	}

	var root imagesRoot
	if err := c.do(req, &root); err != nil {
		return nil, Meta{}, err
	}

	return root.Images, root.Meta, nil
}

// ListKeys returns the SSH public keys registered with the account.
func (c *Client) ListKeys(ctx context.Context) ([]Key, error) {
	req, err := c.newRequest(ctx, "/v2/account/keys", nil)
	if err != nil {
		return nil, err
	}

	var root keysRoot
	if err := c.do(req, &root); err != nil {
		return nil, err
	}

	return root.SSHKeys, nil
}
