package relay

import (
	"encoding/json"

	"github.com/go-i2p/logger"

	"github.com/go-plume/go-plume/lib/event"
)

// Inbound message type tags.
const (
	tagEvent  = "EVENT"
	tagNotice = "NOTICE"
	tagEOSE   = "EOSE"
	tagOK     = "OK"
	tagClosed = "CLOSED"
)

// dispatch parses one inbound frame and routes it to the registered
// callback. Unparsable payloads and messages missing required fields are
// logged and dropped; the connection is never affected. Unrecognized tags
// are ignored.
func (p *Pool) dispatch(relayURL string, data []byte) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil || len(elems) == 0 {
		p.dropMalformed(relayURL, "payload is not a JSON array")
		return
	}
	var tag string
	if err := json.Unmarshal(elems[0], &tag); err != nil {
		p.dropMalformed(relayURL, "message tag is not a string")
		return
	}

	switch tag {
	case tagEvent:
		p.dispatchEvent(relayURL, elems)
	case tagNotice:
		var text string
		if len(elems) < 2 || json.Unmarshal(elems[1], &text) != nil {
			p.dropMalformed(relayURL, "NOTICE missing text")
			return
		}
		if fn := p.noticeHandler(); fn != nil {
			fn(relayURL, text)
		}
	case tagEOSE:
		var subID string
		if len(elems) < 2 || json.Unmarshal(elems[1], &subID) != nil {
			p.dropMalformed(relayURL, "EOSE missing subscription id")
			return
		}
		if fn := p.eoseHandler(); fn != nil {
			fn(relayURL, subID)
		}
	case tagOK:
		p.dispatchOK(relayURL, elems)
	case tagClosed:
		var subID string
		if len(elems) < 2 || json.Unmarshal(elems[1], &subID) != nil {
			p.dropMalformed(relayURL, "CLOSED missing subscription id")
			return
		}
		var reason string
		if len(elems) >= 3 {
			// Optional human-readable reason; ignore parse failure.
			json.Unmarshal(elems[2], &reason)
		}
		if fn := p.subClosedHandler(); fn != nil {
			fn(relayURL, subID, reason)
		}
	default:
		log.WithFields(logger.Fields{
			"at":  "dispatch",
			"url": relayURL,
			"tag": tag,
		}).Debug("ignoring unrecognized message tag")
	}
}

func (p *Pool) dispatchEvent(relayURL string, elems []json.RawMessage) {
	var subID string
	var ev event.Event
	if len(elems) < 3 ||
		json.Unmarshal(elems[1], &subID) != nil ||
		json.Unmarshal(elems[2], &ev) != nil {
		p.dropMalformed(relayURL, "EVENT missing subscription id or event")
		return
	}
	if p.opts.VerifyEvents && !ev.CheckSignature() {
		log.WithFields(logger.Fields{
			"at":     "dispatchEvent",
			"url":    relayURL,
			"sub_id": subID,
			"id":     ev.ID,
		}).Warn("dropping event that failed verification")
		return
	}
	if fn := p.eventHandler(); fn != nil {
		fn(relayURL, subID, ev)
	}
}

func (p *Pool) dispatchOK(relayURL string, elems []json.RawMessage) {
	var eventID, message string
	var accepted bool
	if len(elems) < 3 ||
		json.Unmarshal(elems[1], &eventID) != nil ||
		json.Unmarshal(elems[2], &accepted) != nil {
		p.dropMalformed(relayURL, "OK missing event id or acceptance flag")
		return
	}
	if len(elems) >= 4 {
		json.Unmarshal(elems[3], &message)
	}
	if fn := p.okHandler(); fn != nil {
		fn(relayURL, eventID, accepted, message)
	}
}

func (p *Pool) dropMalformed(relayURL, detail string) {
	log.WithFields(logger.Fields{
		"at":     "dispatch",
		"url":    relayURL,
		"detail": detail,
		"error":  ErrMalformedMessage.Error(),
	}).Warn("dropping malformed inbound message")
}

// Handler snapshot helpers: take the lock briefly so dispatch never invokes
// a callback while holding it.

func (p *Pool) eventHandler() func(string, string, event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.onEvent
}

func (p *Pool) okHandler() func(string, string, bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.onOK
}

func (p *Pool) eoseHandler() func(string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.onEOSE
}

func (p *Pool) subClosedHandler() func(string, string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.onSubClosed
}

func (p *Pool) noticeHandler() func(string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.onNotice
}
