package relay

// State is the lifecycle state of one relay connection.
type State int

const (
	StateUnconnected State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

// String returns the textual state name.
func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Connection is one relay endpoint owned by a Pool. The pool's mutex guards
// the state field; the transport handle is written once when the dial
// completes and read by the sender and reader paths afterwards.
type Connection struct {
	url   string
	state State
	tr    transport
}

// URL returns the relay URL this connection was created for.
func (c *Connection) URL() string {
	return c.url
}
