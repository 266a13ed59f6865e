package digitalocean

// StatusActive is the droplet status once the instance has booted.
// Freshly created droplets report "new" until then.
const StatusActive = "active"

// networkTypePublic marks an interface reachable from the internet.
const networkTypePublic = "public"

// Droplet is a DigitalOcean droplet as returned by the v2 API.
type Droplet struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Networks Networks `json:"networks"`
}

// Networks groups a droplet's network interfaces per address family.
type Networks struct {
	V4 []Network `json:"v4"`
	V6 []Network `json:"v6"`
}

// Network is a single droplet network interface.
type Network struct {
	IPAddress string `json:"ip_address"`
	Type      string `json:"type"`
}

// PublicAddress returns the droplet's first public IP address, scanning the
// IPv4 interfaces before IPv6. ok is false when the droplet has no public
// interface, which happens while the instance is still being wired up.
func (d *Droplet) PublicAddress() (addr string, ok bool) {
	for _, n := range d.Networks.V4 {
		if n.Type == networkTypePublic {
			return n.IPAddress, true
		}
	}
	for _, n := range d.Networks.V6 {
		if n.Type == networkTypePublic {
			return n.IPAddress, true
		}
	}
	return "", false
}

// DropletCreateRequest is the payload for creating a droplet.
type DropletCreateRequest struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	Size   string `json:"size"`
	Image  string `json:"image"`

	// SSHKeys holds ids or fingerprints of keys already registered with the
	// account; they end up in root's authorized_keys on first boot.
	SSHKeys []string `json:"ssh_keys"`

	Tags []string `json:"tags,omitempty"`

	// UserData is the cloud-init script executed on first boot.
	UserData string `json:"user_data,omitempty"`
}

// Region is a datacenter region offered by the provider.
type Region struct {
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Sizes     []string `json:"sizes"`
	Features  []string `json:"features"`
	Available bool     `json:"available"`
}

// Image is an operating system image for new droplets.
type Image struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Distribution string `json:"distribution"`
	Slug         string `json:"slug"`
	Public       bool   `json:"public"`
	MinDiskSize  int    `json:"min_disk_size"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

// Key is an SSH public key registered with the account.
type Key struct {
	ID          int    `json:"id"`
	Fingerprint string `json:"fingerprint"`
	PublicKey   string `json:"public_key"`
	Name        string `json:"name"`
}

// Meta carries listing metadata such as the total number of results.
type Meta struct {
	Total int `json:"total"`
}

type dropletRoot struct {
	Droplet *Droplet `json:"droplet"`
}

type regionsRoot struct {
	Regions []Region `json:"regions"`
	Meta    Meta     `json:"meta"`
}

type imagesRoot struct {
	Images []Image `json:"images"`
	Meta   Meta    `json:"meta"`
}

type keysRoot struct {
	SSHKeys []Key `json:"ssh_keys"`
	Meta    Meta  `json:"meta"`
}
