package relay

import (
	"github.com/go-plume/go-plume/lib/config"
)

// NewPoolFromConfig builds a pool from the loaded pool configuration.
func NewPoolFromConfig(cfg *config.PoolConfig) *Pool {
	return NewPoolWithOptions(cfg.Relays, Options{
		VerifyEvents:      cfg.VerifyEvents,
		KeepaliveInterval: cfg.KeepaliveInterval,
	})
}
