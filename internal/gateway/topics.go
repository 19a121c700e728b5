package gateway

// Bus topics used between the relay handlers and the connection gateway.
const (
	// TopicDirect delivers a frame to one connection named by MetaRecipientID.
	TopicDirect = "relay.direct"
	// TopicRoom delivers a frame to every connection tagged with MetaRoom,
	// skipping MetaExceptID when it is set.
	TopicRoom = "relay.room"
)

// Metadata keys on bus messages.
const (
	MetaRecipientID = "recipient_id"
	MetaRoom        = "room"
	MetaExceptID    = "except_id"
)
