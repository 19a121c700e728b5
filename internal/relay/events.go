package relay

// Event is one of the inbound connection events. The set is closed: only the
// types in this file implement it.
type Event interface {
	eventName() string
}

// Inbound event names on the wire.
const (
	EventJoin         = "join"
	EventSendMessage  = "sendMessage"
	EventSendLocation = "sendLocation"
	EventDisconnect   = "disconnect"
)

// Outbound event names on the wire.
const (
	EventMessage         = "message"
	EventLocationMessage = "locationMessage"
	EventRoomData        = "roomData"
)

// Join asks to enter a room under a username.
type Join struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// SendMessage posts text to the sender's room.
type SendMessage struct {
	Text string
}

// SendLocation shares a position with the sender's room.
type SendLocation struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// Disconnect is raised by the transport when a connection goes away.
type Disconnect struct{}

func (Join) eventName() string         { return EventJoin }
func (SendMessage) eventName() string  { return EventSendMessage }
func (SendLocation) eventName() string { return EventSendLocation }
func (Disconnect) eventName() string   { return EventDisconnect }

// Name returns the wire name of ev.
func Name(ev Event) string {
	return ev.eventName()
}

// Result is the outcome of handling one event. A nil Err acknowledges success.
type Result struct {
	Err error
}

// OK reports whether the event succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Message returns the text sent back to the caller, empty on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
