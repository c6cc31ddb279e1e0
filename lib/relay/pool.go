package relay

import (
	"errors"
	"io"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/go-i2p/logger"

	"github.com/go-plume/go-plume/lib/event"
)

// DefaultKeepaliveInterval is the tick interval for keepalive probes when
// the caller does not configure one.
const DefaultKeepaliveInterval = 30 * time.Second

// Options configures a Pool.
type Options struct {
	// VerifyEvents gates inbound EVENT dispatch on signature verification.
	// Events failing verification are dropped with a warning and never
	// reach the event callback.
	VerifyEvents bool

	// KeepaliveInterval is the tick interval for keepalive probes.
	// Zero means DefaultKeepaliveInterval.
	KeepaliveInterval time.Duration

	// dial substitutes the transport dialer, for tests.
	dial dialFunc
}

// Pool owns a set of relay connections and the subscription registry that
// maps caller-chosen subscription IDs to the relays they are active on.
// All of its state is instance-owned: multiple independent pools can
// coexist in one process. Methods are safe for concurrent use.
type Pool struct {
	mu         sync.Mutex
	conns      map[string]*Connection
	subs       map[string]map[string]struct{}
	keepalives map[string]struct{}
	opts       Options
	dial       dialFunc

	onConnect    func(relayURL string)
	onDisconnect func(relayURL string)
	onError      func(relayURL string, err error)
	onEvent      func(relayURL, subID string, ev event.Event)
	onOK         func(relayURL, eventID string, accepted bool, message string)
	onEOSE       func(relayURL, subID string)
	onSubClosed  func(relayURL, subID, reason string)
	onNotice     func(relayURL, text string)
}

// NewPool creates a pool and begins connecting to every syntactically valid
// relay URL. URLs that are not ws:// or wss:// are skipped with a warning,
// never fatally.
func NewPool(urls ...string) *Pool {
	return NewPoolWithOptions(urls, Options{})
}

// NewPoolWithOptions is NewPool with explicit options.
func NewPoolWithOptions(urls []string, opts Options) *Pool {
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = DefaultKeepaliveInterval
	}
	dial := opts.dial
	if dial == nil {
		dial = dialWebsocket
	}
	p := &Pool{
		conns:      make(map[string]*Connection),
		subs:       make(map[string]map[string]struct{}),
		keepalives: make(map[string]struct{}),
		opts:       opts,
		dial:       dial,
	}
	log.WithFields(logger.Fields{
		"at":        "NewPoolWithOptions",
		"url_count": len(urls),
		"verify":    opts.VerifyEvents,
	}).Debug("creating relay pool")
	for _, rawURL := range urls {
		if err := p.Connect(rawURL); err != nil {
			log.WithError(err).WithField("url", rawURL).Warn("skipping relay URL")
		}
	}
	return p
}

// Connect adds one relay to the pool and dials it in the background. It
// returns an error for a malformed or wrong-scheme URL, or for a relay the
// pool already knows.
func (p *Pool) Connect(rawURL string) error {
	if !validRelayURL(rawURL) {
		return ErrInvalidRelayURL
	}
	c := &Connection{url: rawURL, state: StateConnecting}

	p.mu.Lock()
	if _, dup := p.conns[rawURL]; dup {
		p.mu.Unlock()
		return ErrDuplicateRelay
	}
	p.conns[rawURL] = c
	p.mu.Unlock()

	log.WithField("url", rawURL).Debug("connecting to relay")
	go p.runConnect(c)
	return nil
}

// runConnect dials the relay and transitions the connection to Open, or
// discards it when the dial fails or the pool forgot it meanwhile.
func (p *Pool) runConnect(c *Connection) {
	tr, err := p.dial(c.url)

	p.mu.Lock()
	if cur, ok := p.conns[c.url]; !ok || cur != c {
		// Closed while the dial was in flight.
		p.mu.Unlock()
		if err == nil {
			tr.Close()
		}
		return
	}
	if err != nil {
		delete(p.conns, c.url)
		p.pruneSubscriptionsLocked(c.url)
		c.state = StateClosed
		onError := p.onError
		onDisconnect := p.onDisconnect
		p.mu.Unlock()
		log.WithError(err).WithField("url", c.url).Warn("relay dial failed")
		if onError != nil {
			onError(c.url, err)
		}
		if onDisconnect != nil {
			onDisconnect(c.url)
		}
		return
	}
	c.tr = tr
	c.state = StateOpen
	onConnect := p.onConnect
	p.mu.Unlock()

	log.WithField("url", c.url).Info("relay connection open")
	if onConnect != nil {
		onConnect(c.url)
	}
	go p.readLoop(c)
}

// readLoop dispatches inbound frames until the transport fails or closes.
// One loop per connection, so dispatch order per relay equals transport
// delivery order.
func (p *Pool) readLoop(c *Connection) {
	for {
		data, err := c.tr.Receive()
		if err != nil {
			p.handleTransportClosed(c, err)
			return
		}
		p.dispatch(c.url, data)
	}
}

// handleTransportClosed performs the peer-initiated close transition:
// Open to Closed, removal from the connection map, pruning from every
// subscription, and the error and disconnect callbacks. If the pool already
// forgot this connection (caller-initiated close), nothing fires twice.
func (p *Pool) handleTransportClosed(c *Connection, cause error) {
	p.mu.Lock()
	cur, ok := p.conns[c.url]
	if !ok || cur != c {
		p.mu.Unlock()
		c.tr.Close()
		return
	}
	delete(p.conns, c.url)
	p.pruneSubscriptionsLocked(c.url)
	c.state = StateClosed
	onError := p.onError
	onDisconnect := p.onDisconnect
	p.mu.Unlock()

	c.tr.Close()
	if isAbnormalClose(cause) {
		log.WithError(cause).WithField("url", c.url).Warn("relay transport error")
		if onError != nil {
			onError(c.url, cause)
		}
	} else {
		log.WithField("url", c.url).Debug("relay closed connection")
	}
	if onDisconnect != nil {
		onDisconnect(c.url)
	}
}

// pruneSubscriptionsLocked removes the relay from every subscription's peer
// set and deletes subscriptions whose set becomes empty. Callers hold p.mu.
func (p *Pool) pruneSubscriptionsLocked(relayURL string) {
	for subID, set := range p.subs {
		if _, ok := set[relayURL]; !ok {
			continue
		}
		delete(set, relayURL)
		if len(set) == 0 {
			delete(p.subs, subID)
			log.WithFields(logger.Fields{
				"at":     "pruneSubscriptionsLocked",
				"sub_id": subID,
			}).Debug("subscription left with no relays, removed")
		}
	}
}

// targetsLocked resolves an optional relay subset to connections. An empty
// subset means every relay the pool currently knows. Callers hold p.mu.
func (p *Pool) targetsLocked(relays []string) []*Connection {
	if len(relays) == 0 {
		out := make([]*Connection, 0, len(p.conns))
		for _, c := range p.conns {
			out = append(out, c)
		}
		return out
	}
	out := make([]*Connection, 0, len(relays))
	for _, rawURL := range relays {
		c, ok := p.conns[rawURL]
		if !ok {
			log.WithField("url", rawURL).Warn("targeted relay is not in the pool")
			continue
		}
		out = append(out, c)
	}
	return out
}

// isAbnormalClose distinguishes an abrupt transport failure from the relay
// closing the connection in an orderly way.
func isAbnormalClose(err error) bool {
	return err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed)
}

// Relays returns the URLs of every connection the pool currently holds,
// sorted for stable output.
func (p *Pool) Relays() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.conns))
	for rawURL := range p.conns {
		out = append(out, rawURL)
	}
	sort.Strings(out)
	return out
}

// ConnectionState reports the lifecycle state of one relay, and whether the
// pool knows it at all.
func (p *Pool) ConnectionState(rawURL string) (State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.conns[rawURL]
	if !ok {
		return StateUnconnected, false
	}
	return c.state, true
}

// Subscriptions returns a snapshot of the subscription registry: each
// subscription ID mapped to the sorted relays it is active on.
func (p *Pool) Subscriptions() map[string][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string][]string, len(p.subs))
	for subID, set := range p.subs {
		urls := make([]string, 0, len(set))
		for rawURL := range set {
			urls = append(urls, rawURL)
		}
		sort.Strings(urls)
		out[subID] = urls
	}
	return out
}
