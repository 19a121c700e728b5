// Package relay implements the join, sendMessage, sendLocation and disconnect
// handlers. Handlers are transport agnostic: they mutate the registry, emit
// through an Emitter and return a Result for the transport to acknowledge.
package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/nfrund/roomrelay/internal/domain"
	"github.com/nfrund/roomrelay/internal/messages"
	"github.com/nfrund/roomrelay/internal/moderation"
)

// AdminLabel is the sender label of system notices.
const AdminLabel = "Admin"

// WelcomeText is sent privately to a connection after it joins.
const WelcomeText = "Welcome!"

// Registry is the subset of the room registry the handlers need.
type Registry interface {
	AddUser(u domain.User) (domain.User, error)
	RemoveUser(id string) (domain.User, bool)
	GetUser(id string) (domain.User, bool)
	GetUsersInRoom(room string) []domain.User
}

// Emitter delivers outbound events with one of three scopes.
type Emitter interface {
	// Join tags a connection with a room so room scoped emits reach it.
	Join(connID, room string) error
	// ToConn emits to one connection.
	ToConn(ctx context.Context, connID, event string, data any) error
	// ToRoom emits to every connection in room.
	ToRoom(ctx context.Context, room, event string, data any) error
	// ToRoomExcept emits to every connection in room except exceptID.
	ToRoomExcept(ctx context.Context, room, exceptID, event string, data any) error
}

// Dependencies holds the collaborators of Handlers.
type Dependencies struct {
	Registry   Registry
	Emitter    Emitter
	Classifier moderation.Classifier
}

// Handlers dispatches connection events.
type Handlers struct {
	registry   Registry
	emitter    Emitter
	classifier moderation.Classifier
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewHandlers creates the event handlers.
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		registry:   deps.Registry,
		emitter:    deps.Emitter,
		classifier: deps.Classifier,
		validate:   validator.New(),
		logger:     slog.Default().With("component", "relay"),
	}
}

// Handle runs the handler for ev on behalf of connection connID.
func (h *Handlers) Handle(ctx context.Context, connID string, ev Event) Result {
	switch e := ev.(type) {
	case Join:
		return h.join(ctx, connID, e)
	case SendMessage:
		return h.sendMessage(ctx, connID, e)
	case SendLocation:
		return h.sendLocation(ctx, connID, e)
	case Disconnect:
		h.disconnect(ctx, connID)
		return Result{}
	default:
		// Unreachable while Event stays sealed.
		return Result{Err: domain.NewError(domain.ErrValidation, domain.MsgUnknownEvent)}
	}
}

func (h *Handlers) join(ctx context.Context, connID string, e Join) Result {
	user, err := h.registry.AddUser(domain.User{ID: connID, Username: e.Username, Room: e.Room})
	if err != nil {
		h.logger.Debug("Join rejected", "connID", connID, "error", err)
		return Result{Err: err}
	}

	if err := h.emitter.Join(connID, user.Room); err != nil {
		// The connection vanished between accept and join.
		h.registry.RemoveUser(connID)
		return Result{Err: fmt.Errorf("join room: %w", err)}
	}

	h.emit(h.emitter.ToConn(ctx, connID, EventMessage, messages.GenerateMessage(AdminLabel, WelcomeText)))
	h.emit(h.emitter.ToRoomExcept(ctx, user.Room, connID, EventMessage,
		messages.GenerateMessage(AdminLabel, user.Username+" has joined!")))
	h.emitRoomData(ctx, user.Room)

	h.logger.Info("User joined", "connID", connID, "username", user.Username, "room", user.Room)
	return Result{}
}

func (h *Handlers) sendMessage(ctx context.Context, connID string, e SendMessage) Result {
	if h.classifier.IsProfane(e.Text) {
		h.logger.Debug("Message rejected by profanity filter", "connID", connID)
		return Result{Err: domain.NewError(domain.ErrProfanity, domain.MsgProfanity)}
	}

	user, ok := h.registry.GetUser(connID)
	if !ok {
		return Result{Err: domain.NewError(domain.ErrNotJoined, domain.MsgNotJoined)}
	}

	h.emit(h.emitter.ToRoom(ctx, user.Room, EventMessage, messages.GenerateMessage(user.Username, e.Text)))
	return Result{}
}

func (h *Handlers) sendLocation(ctx context.Context, connID string, e SendLocation) Result {
	user, ok := h.registry.GetUser(connID)
	if !ok {
		return Result{Err: domain.NewError(domain.ErrNotJoined, domain.MsgNotJoined)}
	}
	if err := h.validate.Struct(e); err != nil {
		return Result{Err: domain.NewError(domain.ErrValidation, domain.MsgInvalidLocation)}
	}

	url := messages.LocationURL(e.Latitude, e.Longitude)
	h.emit(h.emitter.ToRoom(ctx, user.Room, EventLocationMessage, messages.GenerateLocationMessage(user.Username, url)))
	return Result{}
}

func (h *Handlers) disconnect(ctx context.Context, connID string) {
	user, ok := h.registry.RemoveUser(connID)
	if !ok {
		return
	}

	h.emit(h.emitter.ToRoom(ctx, user.Room, EventMessage,
		messages.GenerateMessage(AdminLabel, user.Username+" has left!")))
	h.emitRoomData(ctx, user.Room)

	h.logger.Info("User left", "connID", connID, "username", user.Username, "room", user.Room)
}

func (h *Handlers) emitRoomData(ctx context.Context, room string) {
	data := messages.GenerateRoomData(room, h.registry.GetUsersInRoom(room))
	h.emit(h.emitter.ToRoom(ctx, room, EventRoomData, data))
}

// emit logs a failed delivery. Deliveries are best effort and never retried.
func (h *Handlers) emit(err error) {
	if err != nil {
		h.logger.Warn("Failed to emit event", "error", err)
	}
}
