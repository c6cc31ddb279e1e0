package relay

import (
	"github.com/go-plume/go-plume/lib/event"
)

// Callback registration. Each message type has exactly one handler slot;
// registering again replaces the previous handler (last writer wins). Pass
// nil to clear a slot. Handlers run on the connection's reader goroutine,
// so a slow handler delays further dispatch from that relay only.

// OnConnect registers the handler fired when a relay connection opens.
func (p *Pool) OnConnect(fn func(relayURL string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onConnect = fn
}

// OnDisconnect registers the handler fired when a relay connection has
// closed and been forgotten by the pool.
func (p *Pool) OnDisconnect(fn func(relayURL string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDisconnect = fn
}

// OnError registers the handler fired on transport errors.
func (p *Pool) OnError(fn func(relayURL string, err error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = fn
}

// OnEvent registers the handler fired for inbound EVENT messages that pass
// verification (when enabled).
func (p *Pool) OnEvent(fn func(relayURL, subID string, ev event.Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEvent = fn
}

// OnOK registers the handler fired for publish acknowledgements.
func (p *Pool) OnOK(fn func(relayURL, eventID string, accepted bool, message string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onOK = fn
}

// OnEOSE registers the handler fired when a relay reports the end of stored
// events for a subscription.
func (p *Pool) OnEOSE(fn func(relayURL, subID string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEOSE = fn
}

// OnSubscriptionClosed registers the handler fired when a relay closes a
// subscription on its own initiative.
func (p *Pool) OnSubscriptionClosed(fn func(relayURL, subID, reason string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSubClosed = fn
}

// OnNotice registers the handler fired for human-readable relay notices.
func (p *Pool) OnNotice(fn func(relayURL, text string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onNotice = fn
}
