package relay

import (
	"encoding/json"

	"github.com/go-i2p/logger"

	"github.com/go-plume/go-plume/lib/event"
	"github.com/go-plume/go-plume/lib/filter"
)

// Publish sends ["EVENT", ev] to every targeted relay whose connection is
// open. Relays that are not open are skipped with a warning; publish never
// blocks waiting for a connection and never queues for later delivery.
// Acceptance, if any, arrives later as an OK message.
func (p *Pool) Publish(ev event.Event, relays ...string) {
	data, err := json.Marshal([]interface{}{tagEvent, ev})
	if err != nil {
		log.WithError(err).Error("failed to marshal outbound event")
		return
	}

	p.mu.Lock()
	targets := p.openTargetsLocked(relays, "publish")
	p.mu.Unlock()

	for _, c := range targets {
		p.sendTo(c, data)
	}
	log.WithFields(logger.Fields{
		"at":          "(Pool) Publish",
		"id":          ev.ID,
		"relay_count": len(targets),
	}).Debug("published event")
}

// Subscribe sends ["REQ", subID, filters...] to every targeted open relay
// and records each relay the request was sent to in the subscription
// registry, creating the entry on first use.
func (p *Pool) Subscribe(subID string, filters []filter.Filter, relays ...string) {
	elems := make([]interface{}, 0, len(filters)+2)
	elems = append(elems, "REQ", subID)
	for _, f := range filters {
		elems = append(elems, f)
	}
	data, err := json.Marshal(elems)
	if err != nil {
		log.WithError(err).WithField("sub_id", subID).Error("failed to marshal subscription request")
		return
	}

	p.mu.Lock()
	targets := p.openTargetsLocked(relays, "subscribe")
	p.mu.Unlock()

	var sent []string
	for _, c := range targets {
		if p.sendTo(c, data) {
			sent = append(sent, c.url)
		}
	}

	p.mu.Lock()
	set := p.subs[subID]
	if set == nil && len(sent) > 0 {
		set = make(map[string]struct{})
		p.subs[subID] = set
	}
	for _, rawURL := range sent {
		set[rawURL] = struct{}{}
	}
	p.mu.Unlock()

	log.WithFields(logger.Fields{
		"at":          "(Pool) Subscribe",
		"sub_id":      subID,
		"relay_count": len(sent),
	}).Debug("subscription registered")
}

// Unsubscribe sends ["CLOSE", subID] to the targeted relays the
// subscription is active on, then removes them from its peer set. The open
// check gates the send but not the bookkeeping, so a relay that died still
// gets pruned. The registry entry disappears once its peer set is empty.
func (p *Pool) Unsubscribe(subID string, relays ...string) {
	data, err := json.Marshal([]interface{}{"CLOSE", subID})
	if err != nil {
		log.WithError(err).WithField("sub_id", subID).Error("failed to marshal unsubscribe request")
		return
	}

	p.mu.Lock()
	set, ok := p.subs[subID]
	if !ok {
		p.mu.Unlock()
		log.WithField("sub_id", subID).Debug("unsubscribe for unknown subscription")
		return
	}
	var targets []*Connection
	for _, c := range p.targetsLocked(relays) {
		if _, active := set[c.url]; !active {
			continue
		}
		delete(set, c.url)
		if c.state == StateOpen {
			targets = append(targets, c)
		}
	}
	// The subset may name relays the pool no longer holds a connection
	// for; their registry entries still need pruning.
	for _, rawURL := range relays {
		delete(set, rawURL)
	}
	if len(set) == 0 {
		delete(p.subs, subID)
	}
	p.mu.Unlock()

	for _, c := range targets {
		p.sendTo(c, data)
	}
	log.WithFields(logger.Fields{
		"at":     "(Pool) Unsubscribe",
		"sub_id": subID,
	}).Debug("unsubscribed")
}

// Close gracefully closes the targeted relay connections and forgets them:
// open connections get a normal-closure close frame, and every targeted
// relay is dropped from the connection map and pruned from the subscription
// registry whether or not it was open. With no subset, every connection is
// closed and the registry is cleared outright.
func (p *Pool) Close(relays ...string) {
	p.mu.Lock()
	targets := p.targetsLocked(relays)
	for _, c := range targets {
		delete(p.conns, c.url)
		if c.state == StateOpen {
			c.state = StateClosing
		}
	}
	if len(relays) == 0 {
		p.subs = make(map[string]map[string]struct{})
	} else {
		for _, c := range targets {
			p.pruneSubscriptionsLocked(c.url)
		}
	}
	onDisconnect := p.onDisconnect
	p.mu.Unlock()

	for _, c := range targets {
		if c.tr != nil {
			if c.state == StateClosing {
				if err := c.tr.WriteClose(normalClosure); err != nil {
					log.WithError(err).WithField("url", c.url).Debug("close frame not delivered")
				}
			}
			c.tr.Close()
		}
		p.mu.Lock()
		c.state = StateClosed
		p.mu.Unlock()
		log.WithField("url", c.url).Info("closed relay connection")
		if onDisconnect != nil {
			onDisconnect(c.url)
		}
	}
}

// openTargetsLocked filters the resolved target set down to open
// connections, warning for each skipped relay. Callers hold p.mu.
func (p *Pool) openTargetsLocked(relays []string, op string) []*Connection {
	all := p.targetsLocked(relays)
	open := make([]*Connection, 0, len(all))
	for _, c := range all {
		if c.state != StateOpen {
			log.WithFields(logger.Fields{
				"at":    "openTargetsLocked",
				"op":    op,
				"url":   c.url,
				"state": c.state.String(),
				"error": ErrTransportUnavailable.Error(),
			}).Warn("skipping relay that is not open")
			continue
		}
		open = append(open, c)
	}
	return open
}

// sendTo writes one frame, reporting success. Send failures are logged and
// suppressed; the reader loop notices a dead transport and runs the close
// transition.
func (p *Pool) sendTo(c *Connection, data []byte) bool {
	if err := c.tr.Send(data); err != nil {
		log.WithError(err).WithField("url", c.url).Warn("send to relay failed")
		return false
	}
	return true
}
