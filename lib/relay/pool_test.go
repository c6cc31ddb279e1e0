package relay

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-plume/go-plume/lib/filter"
)

const (
	relayA = "wss://relay.a"
	relayB = "wss://relay.b"
)

func waitOpen(t *testing.T, p *Pool, rawURL string) {
	t.Helper()
	require.Eventually(t, func() bool {
		state, ok := p.ConnectionState(rawURL)
		return ok && state == StateOpen
	}, time.Second, 5*time.Millisecond, "relay %s never opened", rawURL)
}

func waitGone(t *testing.T, p *Pool, rawURL string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := p.ConnectionState(rawURL)
		return !ok
	}, time.Second, 5*time.Millisecond, "relay %s never removed", rawURL)
}

func TestPoolSkipsInvalidURLs(t *testing.T) {
	d := newFakeDialer()
	p := NewPoolWithOptions([]string{relayA, relayB, "not-a-url"}, Options{dial: d.dial})
	defer p.Close()

	waitOpen(t, p, relayA)
	waitOpen(t, p, relayB)
	assert.Equal(t, []string{relayA, relayB}, p.Relays())

	_, known := p.ConnectionState("not-a-url")
	assert.False(t, known)
}

func TestPoolRejectsWrongScheme(t *testing.T) {
	d := newFakeDialer()
	p := NewPoolWithOptions(nil, Options{dial: d.dial})
	defer p.Close()

	assert.ErrorIs(t, p.Connect("http://relay.a"), ErrInvalidRelayURL)
	assert.Empty(t, p.Relays())

	require.NoError(t, p.Connect(relayA))
	assert.ErrorIs(t, p.Connect(relayA), ErrDuplicateRelay)
}

func TestDialFailureIsIsolated(t *testing.T) {
	d := newFakeDialer()
	d.refuse[relayB] = true

	var mu sync.Mutex
	var failed []string
	p := NewPoolWithOptions(nil, Options{dial: d.dial})
	defer p.Close()
	p.OnError(func(relayURL string, err error) {
		mu.Lock()
		failed = append(failed, relayURL)
		mu.Unlock()
	})
	require.NoError(t, p.Connect(relayA))
	require.NoError(t, p.Connect(relayB))

	waitOpen(t, p, relayA)
	waitGone(t, p, relayB)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{relayB}, failed)
}

func TestSubscribeRegistryAndClose(t *testing.T) {
	d := newFakeDialer()
	// relay.b never finishes connecting, so only relay.a is open.
	d.hang[relayB] = true
	p := NewPoolWithOptions([]string{relayA, relayB}, Options{dial: d.dial})
	defer p.Close()
	waitOpen(t, p, relayA)

	p.Subscribe("sub1", []filter.Filter{{Kinds: []int{1}}})
	assert.Equal(t, map[string][]string{"sub1": {relayA}}, p.Subscriptions())

	frames := d.transportFor(relayA).sentFrames()
	require.Len(t, frames, 1)
	assert.Equal(t, `["REQ","sub1",{"kinds":[1]}]`, frames[0])

	p.Close(relayA)
	_, known := p.ConnectionState(relayA)
	assert.False(t, known)
	assert.Empty(t, p.Subscriptions())
	assert.Equal(t, normalClosure, d.transportFor(relayA).sentCloseStatus())
}

func TestPublishTargetsOnlyOpenRelays(t *testing.T) {
	d := newFakeDialer()
	p := NewPoolWithOptions([]string{relayA, relayB}, Options{dial: d.dial})
	defer p.Close()
	waitOpen(t, p, relayA)
	waitOpen(t, p, relayB)

	// relay.b goes away; the pool notices and forgets it.
	d.transportFor(relayB).disconnect()
	waitGone(t, p, relayB)

	ev := testSignedEvent(t)
	p.Publish(ev, relayB)
	assert.Empty(t, d.transportFor(relayB).sentFrames())

	p.Publish(ev)
	framesA := d.transportFor(relayA).sentFrames()
	require.Len(t, framesA, 1)
	assert.Contains(t, framesA[0], `"EVENT"`)
	assert.Contains(t, framesA[0], ev.ID)
}

func TestUnsubscribeBookkeeping(t *testing.T) {
	d := newFakeDialer()
	p := NewPoolWithOptions([]string{relayA, relayB}, Options{dial: d.dial})
	defer p.Close()
	waitOpen(t, p, relayA)
	waitOpen(t, p, relayB)

	p.Subscribe("sub1", []filter.Filter{{}})
	require.Len(t, p.Subscriptions()["sub1"], 2)

	p.Unsubscribe("sub1", relayA)
	assert.Equal(t, map[string][]string{"sub1": {relayB}}, p.Subscriptions())
	framesA := d.transportFor(relayA).sentFrames()
	require.Len(t, framesA, 2)
	assert.Equal(t, `["CLOSE","sub1"]`, framesA[1])

	p.Unsubscribe("sub1")
	assert.Empty(t, p.Subscriptions())

	// Unsubscribing something unknown is a quiet no-op.
	p.Unsubscribe("nope")
}

func TestCloseAllClearsEverything(t *testing.T) {
	d := newFakeDialer()
	p := NewPoolWithOptions([]string{relayA, relayB}, Options{dial: d.dial})
	waitOpen(t, p, relayA)
	waitOpen(t, p, relayB)

	var mu sync.Mutex
	var closed []string
	p.OnDisconnect(func(relayURL string) {
		mu.Lock()
		closed = append(closed, relayURL)
		mu.Unlock()
	})

	p.Subscribe("sub1", []filter.Filter{{}})
	p.Subscribe("sub2", []filter.Filter{{}}, relayB)

	p.Close()
	assert.Empty(t, p.Relays())
	assert.Empty(t, p.Subscriptions())
	mu.Lock()
	assert.Len(t, closed, 2)
	mu.Unlock()
}

func TestPeerInitiatedClosePrunesSubscriptions(t *testing.T) {
	d := newFakeDialer()
	p := NewPoolWithOptions([]string{relayA, relayB}, Options{dial: d.dial})
	defer p.Close()
	waitOpen(t, p, relayA)
	waitOpen(t, p, relayB)

	disconnected := make(chan string, 2)
	p.OnDisconnect(func(relayURL string) { disconnected <- relayURL })

	p.Subscribe("sub1", []filter.Filter{{}}, relayA)
	p.Subscribe("sub2", []filter.Filter{{}})

	d.transportFor(relayA).disconnect()

	select {
	case got := <-disconnected:
		assert.Equal(t, relayA, got)
	case <-time.After(time.Second):
		t.Fatal("disconnect callback never fired")
	}
	waitGone(t, p, relayA)
	assert.Equal(t, map[string][]string{"sub2": {relayB}}, p.Subscriptions())
}

func TestAbruptTransportErrorFiresErrorCallback(t *testing.T) {
	d := newFakeDialer()
	p := NewPoolWithOptions([]string{relayA}, Options{dial: d.dial})
	defer p.Close()
	waitOpen(t, p, relayA)

	errs := make(chan error, 1)
	p.OnError(func(relayURL string, err error) { errs <- err })

	d.transportFor(relayA).failWith(assert.AnError)

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, assert.AnError)
	case <-time.After(time.Second):
		t.Fatal("error callback never fired")
	}
	waitGone(t, p, relayA)
}

func TestCallbackSlotsAreLastWriterWins(t *testing.T) {
	d := newFakeDialer()
	p := NewPoolWithOptions([]string{relayA}, Options{dial: d.dial})
	defer p.Close()
	waitOpen(t, p, relayA)

	first := make(chan string, 1)
	second := make(chan string, 1)
	p.OnNotice(func(relayURL, text string) { first <- text })
	p.OnNotice(func(relayURL, text string) { second <- text })

	d.transportFor(relayA).deliver(`["NOTICE","maintenance soon"]`)

	select {
	case text := <-second:
		assert.Equal(t, "maintenance soon", text)
	case <-time.After(time.Second):
		t.Fatal("replacement notice handler never fired")
	}
	select {
	case <-first:
		t.Fatal("replaced handler should not fire")
	default:
	}
}
