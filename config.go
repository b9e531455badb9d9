package ebb

import "log/slog"

const defaultBufferSize = 64

// NetworkConfig carries the parameters every port's initPort hook
// needs, most importantly the default bounded-channel capacity. It is
// passed by pointer into Build so a Ports struct's fields can each size
// their own channel.
type NetworkConfig struct {
	// BufferSize is the default channel capacity for ports that don't
	// otherwise specify one.
	BufferSize int
	Logger     *slog.Logger
}

// NetworkOption configures a Network at construction time.
type NetworkOption func(*NetworkConfig)

// WithBufferSize sets the default channel capacity used by Receiver ports
// built through this network.
func WithBufferSize(n int) NetworkOption {
	return func(c *NetworkConfig) {
		if n > 0 {
			c.BufferSize = n
		}
	}
}

// WithLogger sets the structured logger used for network-level diagnostics.
func WithLogger(l *slog.Logger) NetworkOption {
	return func(c *NetworkConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}
