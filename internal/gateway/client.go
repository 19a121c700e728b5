package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/coder/websocket"

	"github.com/nfrund/roomrelay/internal/relay"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Outbound frames buffered per connection before new ones are dropped.
	sendBufferSize = 256
	// Largest inbound frame accepted.
	maxFrameSize = 32 << 10
)

// client is one live WebSocket connection.
type client struct {
	// id is the session identifier handed to the relay handlers.
	id string
	// room is set once the connection joins. Guarded by Gateway.mu.
	room string
	conn *websocket.Conn
	// send is a buffered channel of outbound frames. Only the gateway loop closes it.
	send    chan []byte
	gateway *Gateway
}

// enqueue queues a frame without blocking. Callers must hold Gateway.mu (read
// is enough) or run on the gateway loop, so send cannot be closed underneath.
func (c *client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		c.gateway.logger.Warn("Client send channel full, dropping frame", "connID", c.id)
		return false
	}
}

// readPump decodes frames from the connection and forwards them to the
// gateway loop. There is at most one reader per connection.
func (c *client) readPump(ctx context.Context) {
	defer func() {
		// The disconnect travels the same channel as the events, so it is
		// handled after everything this connection sent before it.
		c.gateway.submit(inbound{client: c, event: relay.Disconnect{}})
		c.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
	}()

	c.conn.SetReadLimit(maxFrameSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			switch {
			case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
				c.gateway.logger.Info("WebSocket closed normally by client", "connID", c.id)
			case errors.Is(err, io.EOF) || errors.Is(err, context.Canceled):
			default:
				c.gateway.logger.Error("WebSocket read error", "connID", c.id, "error", err)
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.gateway.logger.Warn("Ignoring malformed frame", "connID", c.id, "error", err)
			continue
		}

		ev, err := decodeEvent(frame)
		if !c.gateway.submit(inbound{client: c, ackID: frame.ID, event: ev, decodeErr: err}) {
			return
		}
	}
}

// writePump drains the send channel onto the connection.
func (c *client) writePump() {
	defer c.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")

	for frame := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := c.conn.Write(ctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			c.gateway.logger.Error("WebSocket write error", "connID", c.id, "error", err)
			return
		}
	}
}
