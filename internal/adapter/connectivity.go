package adapter

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"time"
)

const defaultDialTimeout = 3 * time.Second

// NetChecker reports connectivity by opening a TCP connection to a known
// address. Implements domain.ConnectivityChecker.
type NetChecker struct {
	address string
	timeout time.Duration
	dialer  func(ctx context.Context, network, address string) (net.Conn, error)
	logger  *slog.Logger
}

// NewNetChecker creates a checker for cfg. An empty dial address is
// derived from the API base URL (host, port 443 for https, 80 otherwise).
func NewNetChecker(cfg ConnectivityConfig, baseURL string, logger *slog.Logger) *NetChecker {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	address := cfg.DialAddress
	if address == "" {
		address = dialAddressFor(baseURL)
	}

	d := &net.Dialer{}
	return &NetChecker{
		address: address,
		timeout: timeout,
		dialer:  d.DialContext,
		logger:  logger,
	}
}

// IsConnected dials the configured address within the timeout.
func (c *NetChecker) IsConnected(ctx context.Context) bool {
	if c.address == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer(ctx, "tcp", c.address)
	if err != nil {
		c.logger.Info("connectivity check failed", "address", c.address, "error", err)
		return false
	}
	conn.Close()
	return true
}

func dialAddressFor(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

// StaticChecker always reports the same connectivity. Used for --offline
// and in tests.
type StaticChecker bool

// IsConnected returns the fixed value.
func (s StaticChecker) IsConnected(context.Context) bool {
	return bool(s)
}
