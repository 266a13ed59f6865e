// Package cloudinit renders the first-boot user data for a droplet and
// waits for the resulting cloud-init run to complete.
//
// A droplet reports "active" long before its cloud-init script has set up
// WireGuard, so the watcher keeps probing over SSH: connect, read the last
// line of the cloud-init output log, and once that line announces
// completion, download the generated client configuration over the same
// connection. The SSH server itself takes a while to come up on a fresh
// instance, which is why refused or timed out connections are treated as
// "try again" rather than failures.
//
// Security: host key verification is disabled by default. The droplet was
// created moments earlier, so there is no key to verify against; supply a
// HostKeyCallback to change that.
package cloudinit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	scp "github.com/bramvdbogaerde/go-scp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/sud0woodo/DROPGUARD/internal/retry"
)

// finishedPattern matches the closing line cloud-init appends to its output
// log, e.g. "Cloud-init v. 22.4.2 finished at Sat, 07 Jan 2023 13:37:00".
var finishedPattern = regexp.MustCompile(`Cloud-init.+finished at`)

const (
	defaultUser         = "root"
	defaultPort         = 22
	defaultLogPath      = "/var/log/cloud-init-output.log"
	defaultArtifactPath = "/etc/wireguard/wg0-client.conf"
	defaultOutputPath   = "dropguard.conf"
	defaultPollInterval = 10 * time.Second
	defaultDialTimeout  = 10 * time.Second
)

// Config holds the watcher configuration. The zero value of every field
// except Signer selects a default suited to a stock DigitalOcean droplet.
type Config struct {
	// Signer authenticates the SSH connection. Required.
	Signer ssh.Signer

	// User is the login identity on the droplet. Defaults to root, the
	// account the provider installs the SSH keys for.
	User string

	// Port is the SSH port on the droplet. Defaults to 22.
	Port int

	// LogPath is the remote file whose last line announces cloud-init
	// completion. Defaults to /var/log/cloud-init-output.log.
	LogPath string

	// ArtifactPath is the remote file downloaded once setup is complete.
	// Defaults to /etc/wireguard/wg0-client.conf.
	ArtifactPath string

	// OutputPath is the local file the artifact is written to.
	// Defaults to dropguard.conf.
	OutputPath string

	// PollInterval is the pause between probe cycles. Defaults to 10s.
	PollInterval time.Duration

	// DialTimeout bounds the TCP connect and the SSH handshake of each
	// cycle. Defaults to 10s.
	DialTimeout time.Duration

	// HostKeyCallback handles host key verification. If nil,
	// ssh.InsecureIgnoreHostKey() is used.
	HostKeyCallback ssh.HostKeyCallback
}

// Watcher polls a droplet over SSH until its cloud-init run completes, then
// downloads the WireGuard client configuration it generated.
type Watcher struct {
	config *Config

	// dial is swapped out in tests.
	dial func(addr string) (conn, error)
}

// conn is one live SSH connection to the droplet.
type conn interface {
	// LastLogLine returns the last line of the remote file at path.
	LastLogLine(path string) (string, error)
	// Download copies the remote file to the local path.
	Download(ctx context.Context, remotePath, localPath string) error
	Close() error
}

// NewWatcher validates the configuration and applies defaults. The passed
// config is copied, not retained.
func NewWatcher(cfg *Config) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Signer == nil {
		return nil, fmt.Errorf("config signer cannot be nil")
	}

	c := *cfg
	if c.User == "" {
		c.User = defaultUser
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.LogPath == "" {
		c.LogPath = defaultLogPath
	}
	if c.ArtifactPath == "" {
		c.ArtifactPath = defaultArtifactPath
	}
	if c.OutputPath == "" {
		c.OutputPath = defaultOutputPath
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.HostKeyCallback == nil {
		c.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // Fresh droplet, no known host key
	}

	w := &Watcher{config: &c}
	w.dial = w.dialDroplet
	return w, nil
}

// Watch polls the droplet at addr until its cloud-init run completes and the
// artifact is saved locally. It reconnects on every cycle; transient
// connection failures while the instance boots keep the watch alive,
// anything else aborts it. Bound the wait through ctx.
func (w *Watcher) Watch(ctx context.Context, addr string) error {
	return retry.Forever(ctx, w.config.PollInterval, func() error {
		log.Info("waiting for cloud-init to finish")
		return w.probe(ctx, addr)
	})
}

// errSetupRunning marks a healthy probe cycle whose completion check came
// back negative.
var errSetupRunning = errors.New("cloud-init still running")

// probe performs one watch cycle: connect, check the log, and when setup is
// done, fetch the artifact over the same connection. The connection is
// closed on every path out of the cycle.
func (w *Watcher) probe(ctx context.Context, addr string) error {
	c, err := w.dial(addr)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	done, err := w.setupComplete(c)
	if err != nil {
		return err
	}
	if !done {
		return errSetupRunning
	}

	log.Info("cloud-init finished, downloading WireGuard config")
	if err := c.Download(ctx, w.config.ArtifactPath, w.config.OutputPath); err != nil {
		return retry.Fatal(fmt.Errorf("download %s: %w", w.config.ArtifactPath, err))
	}
	log.Infof("configuration saved at %s", w.config.OutputPath)

	return nil
}

// setupComplete reports whether cloud-init has written its closing line to
// the output log. A nonzero exit from the probe command means the log is not
// there yet, which counts as "still running".
func (w *Watcher) setupComplete(c conn) (bool, error) {
	line, err := c.LastLogLine(w.config.LogPath)
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, retry.Fatal(fmt.Errorf("read setup log: %w", err))
	}

	return finishedPattern.MatchString(line), nil
}

// dialDroplet opens an SSH connection to the droplet. A failure to reach the
// TCP port is expected while the instance boots and stays retryable, as is a
// handshake that runs into the dial deadline; a rejected handshake (bad key,
// refused auth) will not heal on its own and is marked fatal.
func (w *Watcher) dialDroplet(addr string) (conn, error) {
	cfg := &ssh.ClientConfig{
		User:            w.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(w.config.Signer)},
		HostKeyCallback: w.config.HostKeyCallback,
		Timeout:         w.config.DialTimeout,
	}

	hostPort := net.JoinHostPort(addr, strconv.Itoa(w.config.Port))
	tcp, err := net.DialTimeout("tcp", hostPort, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	// cfg.Timeout only covers ssh.Dial's own TCP connect; the handshake
	// needs a deadline on the raw connection.
	_ = tcp.SetDeadline(time.Now().Add(w.config.DialTimeout))

	sshConn, chans, reqs, err := ssh.NewClientConn(tcp, hostPort, cfg)
	if err != nil {
		_ = tcp.Close()
		if errors.Is(err, os.ErrDeadlineExceeded) {
			// The host accepted the connection but sshd did not answer
			// in time; still booting.
			return nil, err
		}
		return nil, retry.Fatal(fmt.Errorf("ssh handshake with %s: %w", hostPort, err))
	}
	_ = tcp.SetDeadline(time.Time{})

	return &dropletConn{client: ssh.NewClient(sshConn, chans, reqs)}, nil
}

// dropletConn adapts an *ssh.Client to the conn interface.
type dropletConn struct {
	client *ssh.Client
}

func (c *dropletConn) LastLogLine(path string) (string, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open session: %w", err)
	}
	defer func() { _ = session.Close() }()

	out, err := session.CombinedOutput("tail -n 1 " + path)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(out)), nil
}

func (c *dropletConn) Download(ctx context.Context, remotePath, localPath string) error {
	scpClient, err := scp.NewClientBySSH(c.client)
	if err != nil {
		return fmt.Errorf("open scp session: %w", err)
	}
	defer scpClient.Close()

	return saveAtomic(localPath, func(f *os.File) error {
		return scpClient.CopyFromRemote(ctx, f, remotePath)
	})
}

func (c *dropletConn) Close() error {
	return c.client.Close()
}

// saveAtomic writes through a temporary file in the target directory and
// renames it into place, so a transfer that dies halfway never leaves a
// partial config at path.
func saveAtomic(path string, write func(*os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	// Best-effort cleanup; gone already when the rename went through.
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	if err := write(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", f.Name(), err)
	}

	return os.Rename(f.Name(), path)
}
