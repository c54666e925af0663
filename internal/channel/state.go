package channel

// State is a server loop position.
type State int32

const (
	Idle State = iota
	AwaitingConnection
	AwaitingRequest
	Processing
	AwaitingResponseFlush
	Disconnecting
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingConnection:
		return "awaiting_connection"
	case AwaitingRequest:
		return "awaiting_request"
	case Processing:
		return "processing"
	case AwaitingResponseFlush:
		return "awaiting_response_flush"
	case Disconnecting:
		return "disconnecting"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
