package config

import (
	"net"
	"strings"

	"github.com/pkg/errors"
)

// Validate checks the settings the pipeline cannot start without. The first
// violation is returned.
func (cfg *Config) Validate() error {
	c, e, q := &cfg.Capture, &cfg.Encode, &cfg.Queue

	switch {
	case cfg.Source == "":
		return errors.New("source is empty")
	case c.Width <= 0 || c.Height <= 0:
		return errors.Errorf("invalid frame size %dx%d", c.Width, c.Height)
	case c.Period <= 0:
		return errors.Errorf("capture period must be positive, got %v", c.Period)
	case c.Slack < 0 || c.Slack >= c.Period:
		return errors.Errorf("slack %v must be in [0, period)", c.Slack)
	case c.WarmupFrames < 0 || c.NumFrames < 0:
		return errors.New("frame counts must not be negative")
	case e.Format != "jpeg" && e.Format != "ppm":
		return errors.Errorf("unknown format %q", e.Format)
	case e.MaxFrames < 0:
		return errors.Errorf("max frames must not be negative, got %d", e.MaxFrames)
	case e.JPEGQuality < 0 || e.JPEGQuality > 100:
		return errors.Errorf("jpeg quality %d out of range", e.JPEGQuality)
	case q.FrameDepth <= 0 || q.ServerDepth <= 0:
		return errors.New("queue depths must be positive")
	case q.FrameDepth > c.PoolDepth:
		return errors.Errorf("frame queue depth %d exceeds image pool depth %d", q.FrameDepth, c.PoolDepth)
	case q.ServerDepth > e.PayloadPoolDepth:
		return errors.Errorf("server queue depth %d exceeds payload pool depth %d", q.ServerDepth, e.PayloadPoolDepth)
	case !queueName(q.FrameName) || !queueName(q.ServerName) || q.FrameName == q.ServerName:
		return errors.Errorf("invalid queue names %q, %q", q.FrameName, q.ServerName)
	case cfg.Server.WriteTimeout <= 0:
		return errors.New("server write timeout must be positive")
	}

	if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
		return errors.Wrap(err, "server address")
	}
	if cfg.Monitor.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Monitor.Addr); err != nil {
			return errors.Wrap(err, "monitor address")
		}
	}
	return nil
}

func queueName(name string) bool {
	return len(name) > 1 && name[0] == '/' && !strings.Contains(name[1:], "/")
}
