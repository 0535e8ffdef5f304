package transport

import (
	"context"
	"fmt"
	"net"
	"path"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"github.com/immbridge/immbridge/internal/platform/secrets"
)

// SFTPConfig describes the registry SFTP endpoint.
type SFTPConfig struct {
	Host      string
	Port      int
	RemoteDir string // drop directory, e.g. /users/CLINICTV/hl7-dropoff

	// HostKeyCallback defaults to accepting any host key, matching the
	// registry's rotating front-ends. Deployments pinning a key supply
	// their own callback.
	HostKeyCallback ssh.HostKeyCallback

	// DialTimeout defaults to 30s.
	DialTimeout time.Duration
}

// SFTPDeliverer uploads documents over a fresh SFTP session per call.
// Registry batches are small enough that connection reuse is not worth
// holding sessions across the batch loop.
type SFTPDeliverer struct {
	cfg     SFTPConfig
	secrets secrets.Store
	log     zerolog.Logger
}

// NewSFTPDeliverer builds a deliverer; credentials are fetched from the
// secrets store at delivery time, not held.
func NewSFTPDeliverer(cfg SFTPConfig, store secrets.Store, log zerolog.Logger) *SFTPDeliverer {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.HostKeyCallback == nil {
		cfg.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	return &SFTPDeliverer{cfg: cfg, secrets: store, log: log}
}

func (d *SFTPDeliverer) Deliver(ctx context.Context, name string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	creds, err := d.secrets.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("fetch sftp credentials: %w", err)
	}

	addr := net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            creds.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(creds.Password)},
		HostKeyCallback: d.cfg.HostKeyCallback,
		Timeout:         d.cfg.DialTimeout,
	})
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return fmt.Errorf("open sftp session: %w", err)
	}
	defer client.Close()
	d.log.Info().Str("host", d.cfg.Host).Msg("connection established")

	remote := path.Join(d.cfg.RemoteDir, name)
	f, err := client.Create(remote)
	if err != nil {
		return fmt.Errorf("create %s: %w", remote, err)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", remote, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", remote, err)
	}

	d.log.Info().Str("file", remote).Msg("hl7 file transferred")
	return nil
}
