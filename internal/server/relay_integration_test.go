package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/roomrelay/internal/config"
	"github.com/nfrund/roomrelay/internal/domain"
	"github.com/nfrund/roomrelay/internal/gateway"
	"github.com/nfrund/roomrelay/internal/messages"
	"github.com/nfrund/roomrelay/internal/moderation"
	"github.com/nfrund/roomrelay/internal/pubsub"
	"github.com/nfrund/roomrelay/internal/relay"
	"github.com/nfrund/roomrelay/internal/rooms"
)

// newRelayServer builds the full server around the built-in word list.
func newRelayServer(t *testing.T, port int) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:            port,
		PublicDir:       t.TempDir(),
		LogFormat:       "text",
		LogLevel:        "info",
		ShutdownTimeout: 2 * time.Second,
	}
	filter, err := moderation.NewReloadableFilter(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	registry := rooms.NewRegistry()
	bus := pubsub.NewWatermillBridge()
	gw := gateway.New(gateway.Dependencies{Publisher: bus, Subscriber: bus})
	h := relay.NewHandlers(relay.Dependencies{Registry: registry, Emitter: gw, Classifier: filter})

	return New(Dependencies{
		Config:   cfg,
		Gateway:  gw,
		Handlers: h,
		Registry: registry,
		Filter:   filter,
		Bus:      bus,
	})
}

// setupRelayTest serves a relay server from an httptest server.
func setupRelayTest(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	s := newRelayServer(t, 3000)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.startServices(ctx))

	testServer := httptest.NewServer(s.E)
	t.Cleanup(func() {
		testServer.Close()
		cancel()
		s.closeBus()
	})
	return s, testServer
}

type wireFrame struct {
	Event string          `json:"event"`
	ID    uint64          `json:"id"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

type testClient struct {
	t      *testing.T
	conn   *websocket.Conn
	nextID uint64
}

func dialRelay(t *testing.T, testServer *httptest.Server) *testClient {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "Failed to connect to relay websocket")
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn}
}

// emit sends an event and returns the id its ack will carry.
func (c *testClient) emit(event string, data any) uint64 {
	c.t.Helper()
	c.nextID++
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(map[string]any{"event": event, "id": c.nextID, "data": json.RawMessage(raw)}))
	return c.nextID
}

func (c *testClient) next() wireFrame {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f wireFrame
	require.NoError(c.t, c.conn.ReadJSON(&f), "Failed to read frame")
	return f
}

func (c *testClient) expectMessage(sender, text string) messages.Message {
	c.t.Helper()
	f := c.next()
	require.Equal(c.t, relay.EventMessage, f.Event, "unexpected %s frame", f.Event)
	var m messages.Message
	require.NoError(c.t, json.Unmarshal(f.Data, &m))
	assert.Equal(c.t, sender, m.SenderLabel)
	assert.Equal(c.t, text, m.Text)
	assert.False(c.t, m.SentAt.IsZero())
	return m
}

func (c *testClient) expectRoomData(users ...string) {
	c.t.Helper()
	f := c.next()
	require.Equal(c.t, relay.EventRoomData, f.Event, "unexpected %s frame", f.Event)
	var rd messages.RoomData
	require.NoError(c.t, json.Unmarshal(f.Data, &rd))
	names := make([]string, 0, len(rd.Users))
	for _, u := range rd.Users {
		names = append(names, u.Username)
	}
	assert.Equal(c.t, users, names)
}

func (c *testClient) expectAck(id uint64, errText string) {
	c.t.Helper()
	f := c.next()
	require.Equal(c.t, gateway.EventAck, f.Event, "unexpected %s frame", f.Event)
	assert.Equal(c.t, id, f.ID)
	assert.Equal(c.t, errText, f.Error)
}

func join(username, room string) map[string]string {
	return map[string]string{"username": username, "room": room}
}

// TestRelay_Conversation walks two clients through join, chat, a rejected
// message and a disconnect.
func TestRelay_Conversation(t *testing.T) {
	s, testServer := setupRelayTest(t)
	a := dialRelay(t, testServer)
	b := dialRelay(t, testServer)

	id := a.emit(relay.EventJoin, join("A", "r1"))
	a.expectMessage(relay.AdminLabel, relay.WelcomeText)
	a.expectRoomData("a")
	a.expectAck(id, "")

	id = b.emit(relay.EventJoin, join("B", "r1"))
	b.expectMessage(relay.AdminLabel, relay.WelcomeText)
	b.expectRoomData("a", "b")
	b.expectAck(id, "")
	a.expectMessage(relay.AdminLabel, "b has joined!")
	a.expectRoomData("a", "b")

	t.Run("message reaches the whole room", func(t *testing.T) {
		id := a.emit(relay.EventSendMessage, "hello")
		a.expectMessage("a", "hello")
		a.expectAck(id, "")
		b.expectMessage("a", "hello")
	})

	t.Run("profanity is acked with an error and not delivered", func(t *testing.T) {
		id := a.emit(relay.EventSendMessage, "what the fuck")
		a.expectAck(id, domain.MsgProfanity)

		id = a.emit(relay.EventSendMessage, "sorry")
		a.expectMessage("a", "sorry")
		a.expectAck(id, "")
		b.expectMessage("a", "sorry")
	})

	t.Run("location is shared as a map link", func(t *testing.T) {
		id := b.emit(relay.EventSendLocation, map[string]float64{"latitude": 48.8584, "longitude": 2.2945})
		f := a.next()
		require.Equal(t, relay.EventLocationMessage, f.Event)
		var lm messages.LocationMessage
		require.NoError(t, json.Unmarshal(f.Data, &lm))
		assert.Equal(t, "b", lm.SenderLabel)
		assert.Equal(t, "https://www.google.com/maps?q=48.8584,2.2945", lm.URL)

		assert.Equal(t, relay.EventLocationMessage, b.next().Event)
		b.expectAck(id, "")
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		c := dialRelay(t, testServer)
		id := c.emit(relay.EventJoin, join("a", "R1"))
		c.expectAck(id, domain.MsgUsernameInUse)
	})

	t.Run("disconnect notifies the room", func(t *testing.T) {
		require.NoError(t, a.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

		b.expectMessage(relay.AdminLabel, "a has left!")
		b.expectRoomData("b")

		users := s.Registry().GetUsersInRoom("r1")
		require.Len(t, users, 1)
		assert.Equal(t, "b", users[0].Username)
	})
}

func TestRelay_SendBeforeJoin(t *testing.T) {
	_, testServer := setupRelayTest(t)
	c := dialRelay(t, testServer)

	id := c.emit(relay.EventSendMessage, "anyone?")
	c.expectAck(id, domain.MsgNotJoined)

	id = c.emit("shout", "hi")
	c.expectAck(id, domain.MsgUnknownEvent)
}

func TestRelay_HTTPEndpoints(t *testing.T) {
	_, testServer := setupRelayTest(t)
	c := dialRelay(t, testServer)
	id := c.emit(relay.EventJoin, join("carol", "lobby"))
	c.expectMessage(relay.AdminLabel, relay.WelcomeText)
	c.expectRoomData("carol")
	c.expectAck(id, "")

	resp, err := http.Get(testServer.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(testServer.URL + "/api/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summaries []rooms.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "lobby", summaries[0].Room)
	require.Len(t, summaries[0].Users, 1)
	assert.Equal(t, "carol", summaries[0].Users[0].Username)
}
