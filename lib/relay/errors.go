package relay

import "github.com/samber/oops"

var (
	// ErrMalformedMessage is returned when an inbound payload cannot be
	// parsed as a protocol message. It is logged and suppressed by the
	// dispatch path, never fatal to the connection.
	ErrMalformedMessage = oops.Errorf("malformed inbound message")

	// ErrTransportUnavailable is returned when a send is attempted on a
	// connection that is not open.
	ErrTransportUnavailable = oops.Errorf("transport unavailable: connection not open")

	// ErrKeepaliveActive is returned when a keepalive probe is requested
	// for a peer that already has one running.
	ErrKeepaliveActive = oops.Errorf("keepalive probe already active for peer")

	// ErrUnknownRelay is returned when a keepalive probe is requested for
	// a peer the pool does not know.
	ErrUnknownRelay = oops.Errorf("unknown relay")

	// ErrInvalidRelayURL is returned for URLs that are malformed or do not
	// use the ws or wss scheme.
	ErrInvalidRelayURL = oops.Errorf("invalid relay URL: scheme must be ws or wss")

	// ErrDuplicateRelay is returned when connecting to a relay the pool
	// already holds a connection for.
	ErrDuplicateRelay = oops.Errorf("relay already in pool")
)
