package transport

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	errors "golang.org/x/xerrors"
)

const DefaultRetryInterval = time.Second

type ClientConfig struct {
	// Server address, e.g. "camera.local:12345".
	Addr string

	// Directory the received files are written to.
	Dir string

	// Largest payload accepted. Zero selects DefaultMaxPayload.
	MaxPayload int

	// Delay between connection attempts.
	RetryInterval time.Duration

	// Called after each file is written.
	OnFile func(path string, size int)
}

// Client receives files from a Server and stores them on disk, under their
// base names only.
type Client struct {
	cfg    ClientConfig
	dialer net.Dialer
	buf    []byte
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.MaxPayload <= 0 {
		cfg.MaxPayload = DefaultMaxPayload
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if err := os.MkdirAll(cfg.Dir, 0777); err != nil {
		return nil, errors.Errorf("create %s: %w", cfg.Dir, err)
	}
	return &Client{cfg: cfg}, nil
}

// Run connects and receives until ctx is done, reconnecting after any
// failure, including a malformed frame.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.ReceiveOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Error("Connection to %s ended: %v", c.cfg.Addr, err)
		}

		select {
		case <-time.After(c.cfg.RetryInterval):
		case <-ctx.Done():
			return nil
		}
	}
}

// ReceiveOnce handles a single connection. It returns nil when the server
// closes the connection cleanly between frames.
func (c *Client) ReceiveOnce(ctx context.Context) error {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	log.High("Connected to %v", conn.RemoteAddr())
	for {
		name, payload, err := ReadFrame(conn, MaxFileName, c.cfg.MaxPayload, c.buf)
		if err == io.EOF {
			log.Medium("Server closed the connection")
			return nil
		}
		if err != nil {
			return err
		}
		c.buf = payload[:0]

		base := filepath.Base(name)
		if base == "." || base == ".." || base == string(filepath.Separator) {
			return errors.Errorf("file name %q: %w", name, ErrMalformed)
		}
		path := filepath.Join(c.cfg.Dir, base)
		if err := os.WriteFile(path, payload, 0666); err != nil {
			return errors.Errorf("write %s: %w", path, err)
		}
		log.Low("Received %s (%d bytes)", base, len(payload))
		if c.cfg.OnFile != nil {
			c.cfg.OnFile(path, len(payload))
		}
	}
}
