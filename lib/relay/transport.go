package relay

import (
	"net/url"

	"github.com/samber/oops"
	"golang.org/x/net/websocket"
)

// Close status sent on graceful shutdown, per RFC 6455.
const normalClosure = 1000

// transport is the duplex text transport surface the pool needs from a
// relay connection. The production implementation wraps a websocket; tests
// substitute an in-memory pipe.
type transport interface {
	// Send writes one text frame.
	Send(data []byte) error
	// Receive blocks for the next text frame.
	Receive() ([]byte, error)
	// WriteClose sends a close frame with the given status code.
	WriteClose(status int) error
	// Close tears down the underlying connection.
	Close() error
}

// dialFunc establishes a transport to the given relay URL.
type dialFunc func(rawURL string) (transport, error)

// wsTransport adapts *websocket.Conn to the transport interface.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) Send(data []byte) error {
	return websocket.Message.Send(t.conn, string(data))
}

func (t *wsTransport) Receive() ([]byte, error) {
	var msg string
	if err := websocket.Message.Receive(t.conn, &msg); err != nil {
		return nil, err
	}
	return []byte(msg), nil
}

func (t *wsTransport) WriteClose(status int) error {
	return t.conn.WriteClose(status)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

// dialWebsocket is the production dialFunc.
func dialWebsocket(rawURL string) (transport, error) {
	conn, err := websocket.Dial(rawURL, "", originFor(rawURL))
	if err != nil {
		return nil, oops.Wrapf(err, "failed to dial relay %s", rawURL)
	}
	return &wsTransport{conn: conn}, nil
}

// originFor derives the Origin header the websocket handshake requires from
// the relay URL itself.
func originFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "http://localhost/"
	}
	switch u.Scheme {
	case "wss":
		u.Scheme = "https"
	default:
		u.Scheme = "http"
	}
	u.Path = "/"
	u.RawQuery = ""
	return u.String()
}

// validRelayURL reports whether rawURL is syntactically valid and uses one
// of the two recognized duplex-transport schemes.
func validRelayURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "ws" || u.Scheme == "wss") && u.Host != ""
}
