package domain

import "errors"

// Sentinel error kinds for the relay. Every user-facing failure wraps one of
// these so callers can branch with errors.Is while the client only ever sees
// the human readable message.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrProfanity  = errors.New("profanity rejected")
	ErrNotFound   = errors.New("requested resource not found")
	ErrNotJoined  = errors.New("connection has not joined a room")
)

// Error is a domain failure with a client facing message.
type Error struct {
	// kind is one of the sentinel errors above.
	kind error
	// msg is exactly what is sent back in the acknowledgement.
	msg string
}

// NewError creates an Error of the given kind.
func NewError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Error returns the client facing message.
func (e *Error) Error() string {
	return e.msg
}

// Unwrap returns the sentinel kind.
func (e *Error) Unwrap() error {
	return e.kind
}

// Client facing messages.
const (
	MsgMissingFields   = "Username and room are required!"
	MsgUsernameInUse   = "Username is in use!"
	MsgAlreadyJoined   = "You have already joined a room!"
	MsgProfanity       = "Profanity is not allowed"
	MsgNotJoined       = "You must join a room first"
	MsgInvalidLocation = "Location coordinates are out of range"
	MsgUnknownEvent    = "Unknown event"
	MsgMalformedEvent  = "Malformed event payload"
)
