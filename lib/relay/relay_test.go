package relay

import (
	"io"
	"sync"

	"github.com/samber/oops"
)

// fakeTransport is an in-memory transport for driving the pool in tests.
type fakeTransport struct {
	mu          sync.Mutex
	sent        [][]byte
	closeStatus int
	failErr     error

	inbound   chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound: make(chan []byte, 16),
		done:    make(chan struct{}),
	}
}

func (t *fakeTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.done:
		return oops.Errorf("transport closed")
	default:
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	t.sent = append(t.sent, cp)
	return nil
}

func (t *fakeTransport) Receive() ([]byte, error) {
	select {
	case msg := <-t.inbound:
		return msg, nil
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.failErr != nil {
			return nil, t.failErr
		}
		return nil, io.EOF
	}
}

func (t *fakeTransport) WriteClose(status int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeStatus = status
	return nil
}

func (t *fakeTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

// deliver queues one inbound frame for the reader loop.
func (t *fakeTransport) deliver(frame string) {
	t.inbound <- []byte(frame)
}

// disconnect simulates the peer closing the connection.
func (t *fakeTransport) disconnect() {
	t.Close()
}

// failWith simulates an abrupt transport error.
func (t *fakeTransport) failWith(err error) {
	t.mu.Lock()
	t.failErr = err
	t.mu.Unlock()
	t.Close()
}

func (t *fakeTransport) sentFrames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.sent))
	for i, f := range t.sent {
		out[i] = string(f)
	}
	return out
}

func (t *fakeTransport) sentCloseStatus() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeStatus
}

// fakeDialer hands out fakeTransports per URL. URLs in hang never complete
// their dial, so their connections stay Connecting; URLs in refuse fail.
type fakeDialer struct {
	mu         sync.Mutex
	transports map[string]*fakeTransport
	hang       map[string]bool
	refuse     map[string]bool
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{
		transports: make(map[string]*fakeTransport),
		hang:       make(map[string]bool),
		refuse:     make(map[string]bool),
	}
}

func (d *fakeDialer) dial(rawURL string) (transport, error) {
	d.mu.Lock()
	hang := d.hang[rawURL]
	refuse := d.refuse[rawURL]
	d.mu.Unlock()
	if hang {
		select {} // parked forever; the test process outlives it
	}
	if refuse {
		return nil, oops.Errorf("connection refused")
	}
	t := newFakeTransport()
	d.mu.Lock()
	d.transports[rawURL] = t
	d.mu.Unlock()
	return t, nil
}

func (d *fakeDialer) transportFor(rawURL string) *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transports[rawURL]
}
