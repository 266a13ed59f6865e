package provision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sud0woodo/DROPGUARD/internal/digitalocean"
)

type fakeAPI struct {
	CreateFunc func(ctx context.Context, create *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error)
	GetFunc    func(ctx context.Context, id int) (*digitalocean.Droplet, error)

	creates int
	gets    int
}

func (f *fakeAPI) CreateDroplet(ctx context.Context, create *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error) {
	f.creates++
	return f.CreateFunc(ctx, create)
}

func (f *fakeAPI) GetDroplet(ctx context.Context, id int) (*digitalocean.Droplet, error) {
	f.gets++
	return f.GetFunc(ctx, id)
}

type fakeWatcher struct {
	WatchFunc func(ctx context.Context, addr string) error

	watches int
	addr    string
}

func (f *fakeWatcher) Watch(ctx context.Context, addr string) error {
	f.watches++
	f.addr = addr
	if f.WatchFunc != nil {
		return f.WatchFunc(ctx, addr)
	}
	return nil
}

// writeTemplate drops a minimal user data template into a temp dir and
// returns its path.
func writeTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cloud_config.yml")
	template := "#cloud-config\nruncmd:\n  - ufw allow WG_PORT/udp\n"
	require.NoError(t, os.WriteFile(path, []byte(template), 0o600))
	return path
}

func activeDroplet(id int) *digitalocean.Droplet {
	return &digitalocean.Droplet{
		ID:     id,
		Status: digitalocean.StatusActive,
		Networks: digitalocean.Networks{
			V4: []digitalocean.Network{
				{IPAddress: "10.116.0.2", Type: "private"},
				{IPAddress: "203.0.113.5", Type: "public"},
			},
		},
	}
}

func TestProvision(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	api.CreateFunc = func(_ context.Context, create *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error) {
		assert.Equal(t, "dropguard", create.Name)
		assert.Equal(t, "fra1", create.Region)
		assert.Equal(t, "s-1vcpu-512mb-10gb", create.Size)
		assert.Equal(t, "debian-11-x64", create.Image)
		assert.Equal(t, []string{"123"}, create.SSHKeys)
		assert.Equal(t, []string{"DROPGUARD"}, create.Tags)
		assert.Contains(t, create.UserData, "42069")
		assert.NotContains(t, create.UserData, "WG_PORT")
		return &digitalocean.Droplet{ID: 3164494, Status: "new"}, nil
	}
	api.GetFunc = func(_ context.Context, id int) (*digitalocean.Droplet, error) {
		assert.Equal(t, 3164494, id)
		if api.gets < 3 {
			return &digitalocean.Droplet{ID: id, Status: "new"}, nil
		}
		return activeDroplet(id), nil
	}
	watcher := &fakeWatcher{}

	p := NewProvisioner(api, watcher, &Config{
		UserDataPath: writeTemplate(t),
		PollInterval: time.Millisecond,
	})
	err := p.Provision(context.Background(), Request{
		Name:    "dropguard",
		Region:  "fra1",
		Size:    "s-1vcpu-512mb-10gb",
		SSHKeys: []string{"123"},
		Port:    "42069",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, api.creates)
	assert.Equal(t, 3, api.gets, "two not-ready polls, then active")
	assert.Equal(t, 1, watcher.watches)
	assert.Equal(t, "203.0.113.5", watcher.addr)
}

func TestProvision_NoDropletID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		droplet *digitalocean.Droplet
	}{
		{"nil droplet", nil},
		{"zero id", &digitalocean.Droplet{Status: "new"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := &fakeAPI{
				CreateFunc: func(context.Context, *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error) {
					return tt.droplet, nil
				},
			}
			watcher := &fakeWatcher{}

			p := NewProvisioner(api, watcher, &Config{
				UserDataPath: writeTemplate(t),
				PollInterval: time.Millisecond,
			})
			err := p.Provision(context.Background(), Request{Name: "dropguard", Port: "42069"})

			require.ErrorIs(t, err, ErrNoDropletID)
			var apiErr *digitalocean.Error
			assert.False(t, errors.As(err, &apiErr), "must not look like a provider error")
			assert.Equal(t, 0, api.gets, "status polling must never start")
			assert.Equal(t, 0, watcher.watches)
		})
	}
}

func TestProvision_CreateProviderErrorPropagates(t *testing.T) {
	t.Parallel()

	providerErr := &digitalocean.Error{ID: "unprocessable_entity", Message: "Region is not available", StatusCode: 422}
	api := &fakeAPI{
		CreateFunc: func(context.Context, *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error) {
			return nil, providerErr
		},
	}
	watcher := &fakeWatcher{}

	p := NewProvisioner(api, watcher, &Config{
		UserDataPath: writeTemplate(t),
		PollInterval: time.Millisecond,
	})
	err := p.Provision(context.Background(), Request{Name: "dropguard", Port: "42069"})

	var apiErr *digitalocean.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, providerErr, apiErr)
	assert.Equal(t, 0, api.gets)
	assert.Equal(t, 0, watcher.watches)
}

func TestProvision_PollProviderErrorStops(t *testing.T) {
	t.Parallel()

	providerErr := &digitalocean.Error{ID: "not_found", Message: "The resource you requested could not be found.", StatusCode: 404}
	api := &fakeAPI{
		CreateFunc: func(context.Context, *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error) {
			return &digitalocean.Droplet{ID: 3164494, Status: "new"}, nil
		},
	}
	api.GetFunc = func(context.Context, int) (*digitalocean.Droplet, error) {
		if api.gets == 1 {
			return &digitalocean.Droplet{ID: 3164494, Status: "new"}, nil
		}
		return nil, providerErr
	}
	watcher := &fakeWatcher{}

	p := NewProvisioner(api, watcher, &Config{
		UserDataPath: writeTemplate(t),
		PollInterval: time.Millisecond,
	})
	err := p.Provision(context.Background(), Request{Name: "dropguard", Port: "42069"})

	var apiErr *digitalocean.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not_found", apiErr.ID)
	assert.Equal(t, 2, api.gets)
	assert.Equal(t, 0, watcher.watches)
}

func TestProvision_NoPublicAddress(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		CreateFunc: func(context.Context, *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error) {
			return &digitalocean.Droplet{ID: 3164494, Status: "new"}, nil
		},
		GetFunc: func(_ context.Context, id int) (*digitalocean.Droplet, error) {
			return &digitalocean.Droplet{
				ID:     id,
				Status: digitalocean.StatusActive,
				Networks: digitalocean.Networks{
					V4: []digitalocean.Network{{IPAddress: "10.116.0.2", Type: "private"}},
				},
			}, nil
		},
	}
	watcher := &fakeWatcher{}

	p := NewProvisioner(api, watcher, &Config{
		UserDataPath: writeTemplate(t),
		PollInterval: time.Millisecond,
	})
	err := p.Provision(context.Background(), Request{Name: "dropguard", Port: "42069"})

	require.ErrorIs(t, err, ErrNoPublicAddress)
	assert.Equal(t, 0, watcher.watches)
}

func TestProvision_TimeoutBoundsWait(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		CreateFunc: func(context.Context, *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error) {
			return &digitalocean.Droplet{ID: 3164494, Status: "new"}, nil
		},
		GetFunc: func(_ context.Context, id int) (*digitalocean.Droplet, error) {
			return &digitalocean.Droplet{ID: id, Status: "new"}, nil
		},
	}
	watcher := &fakeWatcher{}

	p := NewProvisioner(api, watcher, &Config{
		UserDataPath: writeTemplate(t),
		PollInterval: time.Millisecond,
		Timeout:      25 * time.Millisecond,
	})
	err := p.Provision(context.Background(), Request{Name: "dropguard", Port: "42069"})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, watcher.watches)
}

func TestProvision_MissingTemplate(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	watcher := &fakeWatcher{}

	p := NewProvisioner(api, watcher, &Config{
		UserDataPath: filepath.Join(t.TempDir(), "cloud_config.yml"),
	})
	err := p.Provision(context.Background(), Request{Name: "dropguard", Port: "42069"})

	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, api.creates, "nothing may be created without user data")
}

func TestProvision_WatcherErrorPropagates(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		CreateFunc: func(context.Context, *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error) {
			return &digitalocean.Droplet{ID: 3164494, Status: "new"}, nil
		},
		GetFunc: func(_ context.Context, id int) (*digitalocean.Droplet, error) {
			return activeDroplet(id), nil
		},
	}
	watchErr := errors.New("ssh handshake with 203.0.113.5:22: ssh: unable to authenticate")
	watcher := &fakeWatcher{
		WatchFunc: func(context.Context, string) error { return watchErr },
	}

	p := NewProvisioner(api, watcher, &Config{
		UserDataPath: writeTemplate(t),
		PollInterval: time.Millisecond,
	})
	err := p.Provision(context.Background(), Request{Name: "dropguard", Port: "42069"})

	assert.ErrorIs(t, err, watchErr)
}

func TestNewProvisioner_Defaults(t *testing.T) {
	t.Parallel()

	p := NewProvisioner(&fakeAPI{}, &fakeWatcher{}, nil)

	assert.Equal(t, "debian-11-x64", p.config.Image)
	assert.Equal(t, "DROPGUARD", p.config.Tag)
	assert.Equal(t, "cloud_config.yml", p.config.UserDataPath)
	assert.Equal(t, 5*time.Second, p.config.PollInterval)
	assert.Equal(t, time.Duration(0), p.config.Timeout, "no deadline unless asked for")
}

func TestProvision_UserDataReachesProviderVerbatim(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cloud_config.yml")
	template := "#cloud-config\nwrite_files:\n  - path: /etc/wireguard/wg0.conf\n    content: |\n      ListenPort = WG_PORT\n"
	require.NoError(t, os.WriteFile(path, []byte(template), 0o600))

	var sent string
	api := &fakeAPI{
		CreateFunc: func(_ context.Context, create *digitalocean.DropletCreateRequest) (*digitalocean.Droplet, error) {
			sent = create.UserData
			return &digitalocean.Droplet{ID: 1, Status: "new"}, nil
		},
		GetFunc: func(_ context.Context, id int) (*digitalocean.Droplet, error) {
			return activeDroplet(id), nil
		},
	}

	p := NewProvisioner(api, &fakeWatcher{}, &Config{
		UserDataPath: path,
		PollInterval: time.Millisecond,
	})
	require.NoError(t, p.Provision(context.Background(), Request{Name: "dropguard", Port: "51820"}))

	assert.Equal(t, strings.ReplaceAll(template, "WG_PORT", "51820"), sent)
}
