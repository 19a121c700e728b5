package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/nfrund/roomrelay/internal/domain"
	"github.com/nfrund/roomrelay/internal/relay"
)

// EventAck is the outbound event name of acknowledgements.
const EventAck = "ack"

// InboundFrame is a client to server frame.
//
//	{"event":"join","id":1,"data":{"username":"a","room":"r1"}}
type InboundFrame struct {
	Event string          `json:"event"`
	ID    uint64          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutboundFrame is a server to client frame. Acks carry ID and, on failure, Error.
type OutboundFrame struct {
	Event string `json:"event"`
	ID    uint64 `json:"id,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// decodeEvent maps a frame onto one of the relay event variants. Each variant
// is listed exactly once; anything else is an unknown event.
func decodeEvent(f InboundFrame) (relay.Event, error) {
	switch f.Event {
	case relay.EventJoin:
		var ev relay.Join
		if err := unmarshalData(f.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case relay.EventSendMessage:
		var text string
		if err := unmarshalData(f.Data, &text); err != nil {
			return nil, err
		}
		return relay.SendMessage{Text: text}, nil

	case relay.EventSendLocation:
		var ev relay.SendLocation
		if err := unmarshalData(f.Data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	default:
		// disconnect is raised by the transport only, never by a client frame.
		return nil, domain.NewError(domain.ErrValidation, domain.MsgUnknownEvent)
	}
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return domain.NewError(domain.ErrValidation, domain.MsgMalformedEvent)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return domain.NewError(domain.ErrValidation, domain.MsgMalformedEvent)
	}
	return nil
}

func encodeFrame(f OutboundFrame) ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", f.Event, err)
	}
	return b, nil
}
