// Package gateway accepts WebSocket connections, assigns session ids, runs the
// single event loop that feeds the relay handlers and delivers the frames they
// emit back to connections through the pub/sub bus.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/roomrelay/internal/domain"
	"github.com/nfrund/roomrelay/internal/pubsub"
	"github.com/nfrund/roomrelay/internal/relay"
)

// EventHandler handles one event for one connection.
type EventHandler interface {
	Handle(ctx context.Context, connID string, ev relay.Event) relay.Result
}

// Dependencies holds the collaborators of a Gateway.
type Dependencies struct {
	Publisher  pubsub.Publisher
	Subscriber pubsub.Subscriber
}

// inbound is one decoded event waiting for the loop.
type inbound struct {
	client    *client
	ackID     uint64
	event     relay.Event
	decodeErr error
}

// Gateway owns every live connection.
type Gateway struct {
	publisher  pubsub.Publisher
	subscriber pubsub.Subscriber
	handler    EventHandler

	// clients maps session ids to connections. Written only by the loop.
	clients map[string]*client
	mu      sync.RWMutex

	register chan *client
	inbound  chan inbound
	// done is closed when the loop exits.
	done chan struct{}
	ctx  context.Context

	logger *slog.Logger
}

// New creates a Gateway. It handles nothing until Start is called.
func New(deps Dependencies) *Gateway {
	return &Gateway{
		publisher:  deps.Publisher,
		subscriber: deps.Subscriber,
		clients:    make(map[string]*client),
		register:   make(chan *client),
		inbound:    make(chan inbound, sendBufferSize),
		done:       make(chan struct{}),
		ctx:        context.Background(),
		logger:     slog.Default().With("component", "gateway"),
	}
}

// Start subscribes the delivery topics and runs the event loop until ctx is
// canceled. It returns once the loop is running.
func (g *Gateway) Start(ctx context.Context, handler EventHandler) error {
	if handler == nil {
		return errors.New("gateway: nil event handler")
	}
	g.handler = handler
	g.ctx = ctx

	if err := g.subscriber.Subscribe(ctx, TopicDirect, g.deliverDirect); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicDirect, err)
	}
	if err := g.subscriber.Subscribe(ctx, TopicRoom, g.deliverRoom); err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicRoom, err)
	}

	go g.run(ctx)
	return nil
}

// Done is closed once the event loop has stopped.
func (g *Gateway) Done() <-chan struct{} {
	return g.done
}

// ConnectionCount returns the number of live connections.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

func (g *Gateway) run(ctx context.Context) {
	g.logger.Info("Gateway event loop started")
	defer func() {
		g.mu.Lock()
		for id, c := range g.clients {
			delete(g.clients, id)
			close(c.send)
		}
		g.mu.Unlock()
		close(g.done)
		g.logger.Info("Gateway event loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-g.register:
			g.mu.Lock()
			g.clients[c.id] = c
			g.mu.Unlock()
			g.logger.Debug("Client registered", "connID", c.id)

		case in := <-g.inbound:
			g.dispatch(ctx, in)
		}
	}
}

// dispatch handles one event to completion, ack included.
func (g *Gateway) dispatch(ctx context.Context, in inbound) {
	if _, ok := in.event.(relay.Disconnect); ok {
		g.unregister(in.client)
		g.handler.Handle(ctx, in.client.id, in.event)
		return
	}

	result := relay.Result{Err: in.decodeErr}
	if in.decodeErr == nil {
		result = g.handler.Handle(ctx, in.client.id, in.event)
	}
	g.ack(in.client, in.ackID, result)
}

func (g *Gateway) unregister(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if current, ok := g.clients[c.id]; ok && current == c {
		delete(g.clients, c.id)
		close(c.send)
		g.logger.Debug("Client unregistered", "connID", c.id)
	}
}

// ack runs on the loop, which is the only goroutine that closes send.
func (g *Gateway) ack(c *client, id uint64, result relay.Result) {
	g.mu.RLock()
	_, live := g.clients[c.id]
	g.mu.RUnlock()
	if !live {
		return
	}

	frame, err := encodeFrame(OutboundFrame{Event: EventAck, ID: id, Error: result.Message()})
	if err != nil {
		g.logger.Error("Failed to encode ack", "connID", c.id, "error", err)
		return
	}
	c.enqueue(frame)
}

// submit hands an event to the loop. It reports false once the loop is gone.
func (g *Gateway) submit(in inbound) bool {
	select {
	case g.inbound <- in:
		return true
	case <-g.done:
		return false
	}
}

// Handler returns an echo.HandlerFunc that upgrades the request and serves the
// connection until it closes.
func (g *Gateway) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // In production, check origin.
		})
		if err != nil {
			g.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		cl := &client{
			id:      uuid.NewString(),
			conn:    conn,
			send:    make(chan []byte, sendBufferSize),
			gateway: g,
		}

		select {
		case g.register <- cl:
		case <-g.done:
			conn.Close(websocket.StatusGoingAway, "Server shutting down")
			return nil
		}

		go cl.writePump()
		cl.readPump(g.ctx)
		return nil
	}
}

// Join implements relay.Emitter.
func (g *Gateway) Join(connID, room string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.clients[connID]
	if !ok {
		return fmt.Errorf("connection %s: %w", connID, domain.ErrNotFound)
	}
	c.room = room
	return nil
}

// ToConn implements relay.Emitter.
func (g *Gateway) ToConn(ctx context.Context, connID, event string, data any) error {
	return g.publish(ctx, TopicDirect, map[string]string{MetaRecipientID: connID}, event, data)
}

// ToRoom implements relay.Emitter.
func (g *Gateway) ToRoom(ctx context.Context, room, event string, data any) error {
	return g.publish(ctx, TopicRoom, map[string]string{MetaRoom: room}, event, data)
}

// ToRoomExcept implements relay.Emitter.
func (g *Gateway) ToRoomExcept(ctx context.Context, room, exceptID, event string, data any) error {
	return g.publish(ctx, TopicRoom, map[string]string{MetaRoom: room, MetaExceptID: exceptID}, event, data)
}

func (g *Gateway) publish(ctx context.Context, topic string, meta map[string]string, event string, data any) error {
	payload, err := encodeFrame(OutboundFrame{Event: event, Data: data})
	if err != nil {
		return err
	}
	if err := g.publisher.Publish(ctx, pubsub.Message{Topic: topic, Payload: payload, Metadata: meta}); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event, topic, err)
	}
	return nil
}

func (g *Gateway) deliverDirect(_ context.Context, msg pubsub.Message) error {
	id := msg.Metadata[MetaRecipientID]

	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.clients[id]
	if !ok {
		g.logger.Debug("Dropping frame for unknown connection", "connID", id)
		return nil
	}
	c.enqueue(msg.Payload)
	return nil
}

func (g *Gateway) deliverRoom(_ context.Context, msg pubsub.Message) error {
	room := msg.Metadata[MetaRoom]
	except := msg.Metadata[MetaExceptID]
	if room == "" {
		return errors.New("room frame without room metadata")
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for id, c := range g.clients {
		if c.room == room && id != except {
			c.enqueue(msg.Payload)
		}
	}
	return nil
}
