package clock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Clock supplies unix-second timestamps for outbound events. Left alone it
// tracks the system clock; after a successful NTP sync it applies the
// measured offset, which keeps event timestamps sane on hosts with a
// drifting clock.
type Clock struct {
	mu     sync.Mutex
	offset time.Duration
}

// New returns a Clock with no offset applied.
func New() *Clock {
	return &Clock{}
}

// Now returns the current unix time in seconds, corrected by any synced
// offset.
func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Add(c.offset).Unix()
}

// Offset returns the currently applied correction.
func (c *Clock) Offset() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// SyncNTP queries the given NTP server once and applies its measured clock
// offset. Responses that fail the library's sanity checks are rejected and
// leave the previous offset in place.
func (c *Clock) SyncNTP(server string) error {
	resp, err := ntp.Query(server)
	if err != nil {
		log.WithError(err).WithField("server", server).Warn("NTP query failed")
		return oops.Wrapf(err, "failed to query NTP server %s", server)
	}
	if err := resp.Validate(); err != nil {
		log.WithError(err).WithField("server", server).Warn("NTP response failed validation")
		return oops.Wrapf(err, "invalid NTP response from %s", server)
	}

	c.mu.Lock()
	c.offset = resp.ClockOffset
	c.mu.Unlock()
	log.WithFields(logger.Fields{
		"at":     "(Clock) SyncNTP",
		"server": server,
		"offset": resp.ClockOffset.String(),
	}).Debug("applied NTP clock offset")
	return nil
}

// setOffset applies a correction directly; used by tests.
func (c *Clock) setOffset(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = d
}
