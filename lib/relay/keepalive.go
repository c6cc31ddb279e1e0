package relay

import (
	"time"

	"github.com/go-i2p/logger"
)

// pingMessage is the liveness probe frame.
var pingMessage = []byte(`["PING"]`)

// StartKeepalive establishes a recurring liveness probe for one relay. On
// each tick the probe is sent if the connection is still open; the first
// tick that finds it no longer open cancels the timer permanently. At most
// one probe may be active per relay: a second request while one is running
// returns ErrKeepaliveActive instead of silently stacking timers.
func (p *Pool) StartKeepalive(rawURL string) error {
	p.mu.Lock()
	c, ok := p.conns[rawURL]
	if !ok {
		p.mu.Unlock()
		return ErrUnknownRelay
	}
	if _, active := p.keepalives[rawURL]; active {
		p.mu.Unlock()
		return ErrKeepaliveActive
	}
	p.keepalives[rawURL] = struct{}{}
	interval := p.opts.KeepaliveInterval
	p.mu.Unlock()

	log.WithFields(logger.Fields{
		"at":       "(Pool) StartKeepalive",
		"url":      rawURL,
		"interval": interval.String(),
	}).Debug("starting keepalive probe")
	go p.keepaliveLoop(c, interval)
	return nil
}

func (p *Pool) keepaliveLoop(c *Connection, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()
		cur, known := p.conns[c.url]
		open := known && cur == c && c.state == StateOpen
		if !open {
			delete(p.keepalives, c.url)
			p.mu.Unlock()
			log.WithField("url", c.url).Debug("keepalive probe self-cancelled")
			return
		}
		p.mu.Unlock()

		p.sendTo(c, pingMessage)
	}
}
